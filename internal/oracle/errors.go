package oracle

import "errors"

// Sentinel errors for oracle operations.
var (
	// ErrUnavailable indicates the provider could not be reached or is
	// temporarily down.
	ErrUnavailable = errors.New("oracle unavailable")

	// ErrAuth indicates the provider rejected the configured credentials.
	ErrAuth = errors.New("oracle authentication failed")

	// ErrRateLimited indicates the provider returned a rate limit response.
	ErrRateLimited = errors.New("oracle rate limited")

	// ErrEmptyReply indicates the provider returned no usable text.
	ErrEmptyReply = errors.New("oracle returned empty reply")

	// ErrMalformedReply indicates the reply contained no decodable JSON
	// object even after repair.
	ErrMalformedReply = errors.New("malformed oracle reply")
)

// IsRetryable reports whether the error is transient and the request can be
// retried after a delay.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
