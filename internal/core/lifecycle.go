package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// Configurable is implemented by modules that take a config subtree.
// Configure runs right after instantiation with the raw node for the
// module's section; decode and stash here, defaults and checks belong
// to the later hooks.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner is implemented by modules that set up state before the
// app starts: apply defaults, open stores, resolve services registered
// by earlier modules and register their own. The backend opens its
// database here so its operation handlers are bound before anything
// starts.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator is implemented by modules that can check their provisioned
// state is usable. Runs after Provision and must not mutate anything;
// the backend pings its store here, the gateway checks its bind
// address parses.
type Validator interface {
	Validate() error
}

// Starter is implemented by modules that run background work. Start
// runs after every module is provisioned and validated, so service
// lookups made here see the complete registry; the gateway resolves
// the pipeline and binds its listener in Start.
type Starter interface {
	Start() error
}

// Stopper is implemented by modules holding resources. Stop runs
// during shutdown in reverse load order, bounded by ctx.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Reloader is implemented by modules that apply a changed config
// section without a restart. The oracle modules swap credentials and
// clients here under their own locks while requests in flight keep
// the snapshot they started with.
type Reloader interface {
	Reload(ctx *AppContext) error
}
