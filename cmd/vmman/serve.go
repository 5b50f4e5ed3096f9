package main

import (
	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon until a shutdown signal",
		Long: `Serve loads every configured module (backend, oracle, scheduler and,
when configured, the HTTP gateway), starts them, and blocks. SIGHUP or
a change to the config file reloads the configuration in place.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.Run(runParams())
		},
	}
}
