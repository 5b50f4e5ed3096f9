package confirm

import "errors"

var (
	// ErrUnknownToken is returned when a resume token does not exist, was
	// already redeemed, or expired. All three look the same to the caller.
	ErrUnknownToken = errors.New("unknown or expired confirmation token")

	// ErrDeclined is returned when the caller answers no, either at the
	// synchronous prompt or on a deferred resume.
	ErrDeclined = errors.New("operation cancelled")

	// ErrStoreFull is returned by Put when the store already holds the
	// maximum number of unredeemed tokens. Entries drain via Take, Sweep,
	// or TTL expiry.
	ErrStoreFull = errors.New("confirmation store full")
)
