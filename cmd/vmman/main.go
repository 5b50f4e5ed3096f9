// Package main is the entry point for the vmman CLI and daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"

	// Compiled-in modules. Each registers itself with the core registry
	// via its init function.
	_ "github.com/akshit7093/VM-manager-AgenticAi/internal/cron"
	_ "github.com/akshit7093/VM-manager-AgenticAi/internal/gateway"
	_ "github.com/akshit7093/VM-manager-AgenticAi/modules/backend/sqlitecloud"
	_ "github.com/akshit7093/VM-manager-AgenticAi/modules/oracle/anthropic"
	_ "github.com/akshit7093/VM-manager-AgenticAi/modules/oracle/gemini"
	_ "github.com/akshit7093/VM-manager-AgenticAi/modules/oracle/openai"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagDataDir string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vmman",
		Short:         "Natural-language management for a simulated cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "persistent data directory")
	root.AddCommand(
		chatCmd(),
		askCmd(),
		serveCmd(),
		mcpCmd(),
		serviceCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}

// runParams assembles the shared runtime parameters from the persistent
// flags and the build metadata.
func runParams() app.RunParams {
	return app.RunParams{
		ConfigPath: flagConfig,
		DataDir:    flagDataDir,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("vmman %s (commit: %s, built: %s)\n", version, commit, date)
			mods := core.GetModules()
			if len(mods) == 0 {
				fmt.Println("\nNo compiled modules.")
				return
			}
			fmt.Println("\nCompiled modules:")
			for _, mod := range mods {
				fmt.Printf("  %s\n", mod.ID)
			}
		},
	}
}
