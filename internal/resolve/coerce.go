package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
)

// truthy is the fixed vocabulary boolean fields accept as true. Everything
// else is false.
var truthy = map[string]bool{"true": true, "1": true, "yes": true}

// Coerce converts a merged parameter value to its declared type.
func Coerce(spec capability.ParamSpec, value any) (any, error) {
	switch spec.Type {
	case capability.TypeInteger:
		return coerceInt(spec.Name, value)
	case capability.TypeBoolean:
		return coerceBool(value), nil
	case capability.TypeString:
		return coerceString(value), nil
	default:
		return value, nil
	}
}

// coerceInt filters the numeric characters out of string inputs before
// conversion, so "10GB" resolves to 10. A value with no digits at all is an
// error naming the parameter, never a silent zero.
func coerceInt(name string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		digits := filterDigits(v)
		if digits == "" {
			return 0, fmt.Errorf("%w: %s=%q contains no digits", ErrInvalidParameterValue, name, v)
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidParameterValue, name, v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s has non-numeric type %T", ErrInvalidParameterValue, name, value)
	}
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return truthy[strings.ToLower(strings.TrimSpace(v))]
	case float64:
		return v == 1
	case int:
		return v == 1
	default:
		return false
	}
}

func coerceString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%v", value)
}

func filterDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
