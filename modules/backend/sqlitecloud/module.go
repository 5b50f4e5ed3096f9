// Package sqlitecloud implements the backend.sqlitecloud module: a
// simulated OpenStack-style cloud inventory backed by SQLite. It binds a
// handler for every catalog operation and publishes the usage recorder
// that the scheduler snapshots from.
package sqlitecloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

// Module wires the inventory store into the application lifecycle.
type Module struct {
	config Config
	logger *slog.Logger
	db     *sql.DB
	store  *Store
}

// Interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo returns the module identity.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "backend.sqlitecloud",
		New: func() core.Module { return new(Module) },
	}
}

// Configure decodes the YAML module config.
func (m *Module) Configure(node *yaml.Node) error {
	if node != nil {
		if err := node.Decode(&m.config); err != nil {
			return fmt.Errorf("sqlitecloud: decode config: %w", err)
		}
	}
	m.config.defaults()
	return nil
}

// Provision opens the inventory database, seeds the stock catalog, and
// binds a handler to every declared operation. The capability registry
// must already be registered by the host.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	path := m.config.Path
	if path == "" {
		path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	db, err := openDB(path, m.config)
	if err != nil {
		return fmt.Errorf("sqlitecloud: open %s: %w", path, err)
	}
	m.db = db

	if m.config.seedEnabled() {
		if err := seed(db); err != nil {
			return fmt.Errorf("sqlitecloud: seed catalog: %w", err)
		}
	}

	m.store = NewStore(db, m.logger)

	svc, ok := ctx.GetService("capability.registry")
	if !ok {
		return errors.New("sqlitecloud: capability.registry service not available")
	}
	reg, ok := svc.(*capability.Registry)
	if !ok {
		return fmt.Errorf("sqlitecloud: capability.registry has unexpected type %T", svc)
	}
	if err := bindOperations(reg, m.store, m.config.FailAuth); err != nil {
		return fmt.Errorf("sqlitecloud: bind operations: %w", err)
	}

	ctx.RegisterService("backend.usage", m.store)

	m.logger.Info("backend ready",
		"path", path,
		"operations", len(reg.Bound()),
		"fail_auth", m.config.FailAuth)
	return nil
}

// Validate checks the configuration and probes the opened database.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if m.db == nil {
		return errors.New("sqlitecloud: database not opened")
	}
	if err := m.db.Ping(); err != nil {
		return fmt.Errorf("sqlitecloud: ping database: %w", err)
	}
	var n int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM images").Scan(&n); err != nil {
		return fmt.Errorf("sqlitecloud: probe images table: %w", err)
	}
	return nil
}

// Stop closes the inventory database.
func (m *Module) Stop(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	m.logger.Info("closing inventory database")
	return m.db.Close()
}

// Store returns the inventory store for host wiring.
func (m *Module) Store() *Store {
	return m.store
}
