package gateway

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultBind            = "127.0.0.1:8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultMaxBodyBytes    = 1 << 20
)

// Config holds the HTTP server settings, decoded from the top-level
// gateway section of the config file.
type Config struct {
	Bind            string        `yaml:"bind"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	Auth            AuthConfig    `yaml:"auth"`
}

// AuthConfig lists the bearer tokens accepted on the protected routes.
// An empty list leaves the gateway open. Liveness, readiness and the
// metrics scrape target never require a token.
type AuthConfig struct {
	Tokens []string `yaml:"tokens"`
}

// Enabled reports whether requests must present a token.
func (a AuthConfig) Enabled() bool {
	return len(a.Tokens) > 0
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = defaultBind
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
}

func (c *Config) validate() error {
	if _, _, err := net.SplitHostPort(c.Bind); err != nil {
		return fmt.Errorf("gateway: invalid bind address %q: %w", c.Bind, err)
	}
	for i, tok := range c.Auth.Tokens {
		if tok == "" {
			return fmt.Errorf("gateway: auth.tokens[%d] is empty", i)
		}
	}
	return nil
}
