package capability

import "errors"

var (
	// ErrUnknownOperation is returned when a name is not in the registry.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrDuplicateOperation is returned when the catalog declares the same
	// operation name twice.
	ErrDuplicateOperation = errors.New("operation already declared")

	// ErrEmptyOperationName is returned when an operation name is empty.
	ErrEmptyOperationName = errors.New("operation name must not be empty")

	// ErrBadParamSpec is returned when a parameter declaration is
	// inconsistent, e.g. marked required while carrying a default.
	ErrBadParamSpec = errors.New("invalid parameter declaration")

	// ErrNotBound is returned when an operation is executed before a
	// backend module bound a handler for it.
	ErrNotBound = errors.New("operation has no bound handler")
)
