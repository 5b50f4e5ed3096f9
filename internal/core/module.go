package core

// ModuleID uniquely identifies a module. IDs are namespaced with dots,
// e.g. "oracle.gemini" or "backend.sqlitecloud".
type ModuleID string

// Namespace returns the portion of the ID before the last dot, or the
// whole ID when there is none.
func (id ModuleID) Namespace() string {
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return s
}

// ModuleInfo describes a registered module: its unique ID and a
// constructor returning a fresh, unconfigured instance.
type ModuleInfo struct {
	ID  ModuleID
	New func() Module
}

// Module is the minimal interface every module implements. Modules
// opt into lifecycle phases by additionally implementing Configurable,
// Provisioner, Validator, Starter, Stopper, or Reloader.
type Module interface {
	ModuleInfo() ModuleInfo
}
