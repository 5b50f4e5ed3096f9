// Package capability declares the backend operation schema and the registry
// the pipeline resolves against. The schema is a static table built once at
// startup; backend modules bind a handler to each operation they implement.
package capability

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TypeTag is the declared type of an operation parameter.
type TypeTag string

// Parameter type vocabulary.
const (
	TypeString  TypeTag = "string"
	TypeInteger TypeTag = "integer"
	TypeBoolean TypeTag = "boolean"
	TypeAny     TypeTag = "any"
)

// ParamSpec describes one parameter of an operation. Required is true iff
// the operation declares no default for it.
type ParamSpec struct {
	Name     string
	Type     TypeTag
	Required bool
	Default  any
	Doc      string
}

// Operation describes one named backend action. Params keep declaration
// order so prompts and solicitation walk them deterministically. Critical
// operations require explicit consent before execution.
type Operation struct {
	Name     string
	Doc      string
	Params   []ParamSpec
	Critical bool
}

// Param returns the ParamSpec with the given name.
func (op Operation) Param(name string) (ParamSpec, bool) {
	for _, p := range op.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Accepts reports whether the operation declares a parameter with the
// given name.
func (op Operation) Accepts(name string) bool {
	_, ok := op.Param(name)
	return ok
}

// RequiredParams returns the required ParamSpecs in declaration order.
func (op Operation) RequiredParams() []ParamSpec {
	var out []ParamSpec
	for _, p := range op.Params {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

// Describe renders the operation with a concrete argument set, e.g.
// "delete_server(id_or_name=web-01)". Arguments are sorted by name so the
// output is stable.
func (op Operation) Describe(args map[string]any) string {
	if len(args) == 0 {
		return op.Name + "()"
	}
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op.Name)
	b.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", name, args[name])
	}
	b.WriteByte(')')
	return b.String()
}

// Handler executes an operation against the backend with fully resolved
// arguments. Implementations are bound by backend modules at provision time.
type Handler func(ctx context.Context, args map[string]any) (any, error)
