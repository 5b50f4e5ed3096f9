// Package app assembles the vmman runtime shared by the binaries:
// configuration, logging, the module lifecycle, the command pipeline,
// and the live-reload loop.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/reload"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string
}

// Run builds the daemon runtime, starts all modules, and blocks until a
// shutdown signal is received. SIGHUP and config file changes trigger a
// live configuration reload.
func Run(params RunParams) error {
	rt, err := Build(context.Background(), params, ModeDaemon)
	if err != nil {
		return err
	}

	if err := rt.Start(); err != nil {
		rt.Close()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watcher := reload.NewWatcher(rt.ConfigPath, 0, rt.Reload, rt.Logger)
	watcher.Start(watchCtx)
	defer watcher.Stop()

	for {
		sig := <-sigCh
		switch sig {
		case syscall.SIGHUP:
			rt.Logger.Info("SIGHUP received, reloading configuration")
			if err := rt.Reload(watchCtx); err != nil {
				rt.Logger.Error("reload failed", "error", err)
			}
		default:
			rt.Logger.Info("shutdown signal received", "signal", sig.String())
			rt.Close()
			rt.Logger.Info("shutdown complete")
			return nil
		}
	}
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/vmman/vmman.yaml → ~/.config/vmman/vmman.yaml → ./vmman.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "vmman", "vmman.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "vmman", "vmman.yaml"))
	}

	candidates = append(candidates, "vmman.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/vmman if set, otherwise ~/.local/share/vmman per the XDG spec.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "vmman")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "vmman")
}
