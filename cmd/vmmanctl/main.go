// Package main is the entry point for vmmanctl, the remote client for a
// running vmman gateway.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagAddr  string
	flagToken string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vmmanctl",
		Short:         "Remote client for a running vmman gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagAddr, "addr", "127.0.0.1:8080",
		"gateway address (host:port or a full http(s) URL)")
	root.PersistentFlags().StringVar(&flagToken, "token", os.Getenv("VMMAN_TOKEN"),
		"bearer token for the gateway (defaults to $VMMAN_TOKEN)")
	root.AddCommand(
		commandCmd(),
		confirmCmd(),
		cancelCmd(),
		statusCmd(),
		operationsCmd(),
		reloadCmd(),
		watchCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vmmanctl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
