package sqlitecloud

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend operations. Handlers wrap these with the
// resource kind and identifier so envelope messages stay precise.
var (
	// ErrNotFound indicates no resource matched the given ID or name.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the request collides with existing state,
	// e.g. a duplicate name.
	ErrConflict = errors.New("conflict")

	// ErrInUse indicates the resource is referenced by another and cannot
	// be removed until released.
	ErrInUse = errors.New("in use")
)

func notFound(kind, idOrName string) error {
	return fmt.Errorf("%s %q: %w", kind, idOrName, ErrNotFound)
}
