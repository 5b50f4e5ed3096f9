package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/config"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"
)

// starterConfig is the commented template written by config init.
const starterConfig = `# vmman configuration.
# Values support ${VAR} and ${VAR:-default} environment expansion.
version: "1"

# debug, info, warn, or error.
log_level: info

oracle:
  # gemini, anthropic, or openai.
  provider: gemini
  config:
    api_key: ${GEMINI_API_KEY}
    # model: gemini-2.0-flash
    # timeout: 30s

backend:
  # The simulated cloud inventory, stored under the data directory
  # unless path points elsewhere.
  config:
    seed: true
    # path: /var/lib/vmman/inventory.db
    # fail_auth: true simulates rejected credentials on every call.

# pipeline:
#   max_solicit_attempts: 3
#   placeholder_markers: []

# confirmations:
#   ttl: 10m

# default_parameters:
#   create_server:
#     flavor_name: m1.small

# gateway:
#   bind: 127.0.0.1:8080
#   auth:
#     tokens:
#       - ${VMMAN_API_TOKEN}

# cron:
#   confirmation_sweep: "*/1 * * * *"
#   usage_snapshot: "*/10 * * * *"

# telemetry:
#   enabled: true
#   endpoint: localhost:4318
#   insecure: true
#   sample_rate: 0.1
`

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd(), configCheckCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flagConfig
			if path == "" {
				target, err := defaultConfigTarget()
				if err != nil {
					return err
				}
				path = target
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flagConfig
			if path == "" {
				resolved, err := app.ResolveConfigPath()
				if err != nil {
					return err
				}
				path = resolved
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			redactSecrets(&cfg.Oracle.Config)
			redactSecrets(&cfg.Backend.Config)
			redactSecrets(&cfg.Gateway)

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, out)
			return nil
		},
	}
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			ids := config.Resolve(cfg)
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
			}
			return nil
		},
	}
}

// defaultConfigTarget is where config init writes when --config is not
// given: the first location ResolveConfigPath would search.
func defaultConfigTarget() (string, error) {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "vmman", "vmman.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vmman", "vmman.yaml"), nil
}

// redactSecrets masks values under credential-looking keys so config show
// output is safe to paste into an issue.
func redactSecrets(node *yaml.Node) {
	if node == nil || node.Kind == 0 {
		return
	}
	if node.Kind != yaml.MappingNode {
		for _, child := range node.Content {
			redactSecrets(child)
		}
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if secretKey(key.Value) {
			maskNode(value)
			continue
		}
		redactSecrets(value)
	}
}

// maskNode overwrites every value scalar beneath node.
func maskNode(node *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		node.SetString("[redacted]")
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			maskNode(node.Content[i])
		}
	default:
		for _, child := range node.Content {
			maskNode(child)
		}
	}
}

func secretKey(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"key", "token", "secret", "password"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
