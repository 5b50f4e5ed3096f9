package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// mapHTTPError maps an HTTP status code and response body to an oracle
// sentinel error. Returns nil for 2xx status codes.
func mapHTTPError(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var msg string
	var wrapper struct {
		Error apiError `json:"error"`
	}
	if json.Unmarshal(body, &wrapper) == nil && wrapper.Error.Message != "" {
		msg = wrapper.Error.Message
	} else {
		msg = string(body)
	}

	switch {
	case statusCode == 429:
		return fmt.Errorf("%w: %s", oracle.ErrRateLimited, msg)
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%w: %s", oracle.ErrAuth, msg)
	// Gemini reports a bad key as 400 INVALID_ARGUMENT rather than 401.
	case statusCode == 400 && strings.Contains(msg, "API key not valid"):
		return fmt.Errorf("%w: %s", oracle.ErrAuth, msg)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s", oracle.ErrUnavailable, msg)
	default:
		return fmt.Errorf("gemini: HTTP %d: %s", statusCode, msg)
	}
}

// mapConnectionError maps network-level errors to oracle sentinel errors.
// Context errors pass through unchanged.
func mapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", oracle.ErrUnavailable, err)
	}
	return fmt.Errorf("gemini: %w", err)
}
