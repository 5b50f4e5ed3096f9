package resolve

import "errors"

var (
	// ErrInvalidParameterValue is returned when a value cannot be coerced
	// to its declared type. The parameter name is always wrapped in.
	ErrInvalidParameterValue = errors.New("invalid parameter value")

	// ErrMissingRequired is returned when interactive collection ends with
	// a required parameter still unresolved. The resolver fails closed.
	ErrMissingRequired = errors.New("missing required parameter")

	// ErrSolicitationAborted is returned when the caller abandons an
	// interactive prompt.
	ErrSolicitationAborted = errors.New("parameter solicitation aborted")
)
