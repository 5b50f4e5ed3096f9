package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
)

// Validate checks the structural validity of a Config: the version
// field, that the selected oracle and backend modules exist in the
// registry, and that the tuning sections carry usable values. Module
// subtrees are validated by the owning modules during their lifecycle.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log_level %q (debug, info, warn, error)", cfg.LogLevel))
	}

	if cfg.Oracle.Provider == "" {
		errs = append(errs, errors.New("config: oracle.provider is required"))
	} else if _, ok := core.GetModule(cfg.Oracle.ModuleID()); !ok {
		errs = append(errs, fmt.Errorf("config: unknown oracle module %q (registered: %s)",
			cfg.Oracle.ModuleID(), namespaceIDs("oracle")))
	}

	if _, ok := core.GetModule(cfg.Backend.ModuleID()); !ok {
		errs = append(errs, fmt.Errorf("config: unknown backend module %q (registered: %s)",
			cfg.Backend.ModuleID(), namespaceIDs("backend")))
	}

	if cfg.Pipeline.MaxSolicitAttempts < 0 {
		errs = append(errs, fmt.Errorf("config: pipeline.max_solicit_attempts must not be negative, got %d",
			cfg.Pipeline.MaxSolicitAttempts))
	}

	if _, err := cfg.Confirmations.ParsedTTL(); err != nil {
		errs = append(errs, err)
	}

	if rate := cfg.Telemetry.SampleRate; rate < 0 || rate > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.sample_rate must be within [0, 1], got %v", rate))
	}

	errs = append(errs, validateDefaultParameters(cfg.DefaultParameters)...)

	return errors.Join(errs...)
}

// namespaceIDs renders the registered module IDs under a namespace for
// error text naming the alternatives.
func namespaceIDs(namespace string) string {
	infos := core.GetModulesByNamespace(namespace)
	if len(infos) == 0 {
		return "none compiled in"
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, string(info.ID))
	}
	return strings.Join(ids, ", ")
}

// validateDefaultParameters rejects composite values. Defaults substitute
// directly into operation arguments, so only scalars make sense.
func validateDefaultParameters(defaults map[string]map[string]any) []error {
	var errs []error
	for op, params := range defaults {
		for name, value := range params {
			switch value.(type) {
			case string, bool, int, int64:
			default:
				errs = append(errs, fmt.Errorf(
					"config: default_parameters.%s.%s: value must be a string, integer, or boolean, got %T",
					op, name, value))
			}
		}
	}
	return errs
}
