package main

import (
	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/mcpserver"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline over MCP on stdin/stdout",
		Long: `Mcp exposes the command pipeline to MCP clients over stdio: a command
tool that runs free-form text, a confirm_command tool that resolves
pending confirmation tokens from the same session, and a read-only
list_operations tool describing the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.Build(cmd.Context(), runParams(), app.ModeLocal)
			if err != nil {
				return err
			}
			if err := rt.Start(); err != nil {
				rt.Close()
				return err
			}
			defer rt.Close()

			srv, err := mcpserver.New(mcpserver.Options{
				Pipeline: rt.Pipeline,
				Registry: rt.Registry,
				Version:  version,
				Logger:   rt.Logger,
			})
			if err != nil {
				return err
			}
			return mcpserver.ServeStdio(cmd.Context(), srv)
		},
	}
}
