package sqlitecloud

import "fmt"

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "cloud.db"
)

// Config holds the simulated cloud backend configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/cloud.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// Seed populates the inventory with the stock images, flavors, and
	// networks on first boot. Defaults to true.
	Seed *bool `yaml:"seed"`

	// FailAuth makes every operation return a simulated 401, for
	// exercising credential failure handling end to end.
	FailAuth bool `yaml:"fail_auth"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.Seed == nil {
		t := true
		c.Seed = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) seedEnabled() bool {
	return c.Seed == nil || *c.Seed
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlitecloud: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	return nil
}
