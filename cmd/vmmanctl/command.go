package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func commandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "command <text>",
		Short: "Run one natural-language command against the gateway",
		Long: `Posts the text to /api/command and prints the response envelope as JSON.

The envelope status tells you what happened: "success" carries the result,
"missing_parameters" lists what was missing, "confirmation_required" prints
a token for a critical operation parked by the daemon. Tokens live in the
daemon, so a later "vmmanctl confirm <token>" redeems them from anywhere
that can reach the gateway.`,
		Example: `  vmmanctl command "list servers"
  vmmanctl --addr gateway:8080 --token $VMMAN_TOKEN command "delete server web-1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("command text is empty")
			}
			c, err := newClient(flagAddr, flagToken)
			if err != nil {
				return err
			}
			env, err := c.command(cmd.Context(), envelope.Request{Text: text})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env)
		},
	}
}

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <token>",
		Short: "Approve a pending critical operation",
		Args:  cobra.ExactArgs(1),
		RunE:  resumeRunE(true),
	}
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <token>",
		Short: "Discard a pending critical operation",
		Args:  cobra.ExactArgs(1),
		RunE:  resumeRunE(false),
	}
}

// resumeRunE builds the run function shared by confirm and cancel; the
// two differ only in the decision carried by the resume request.
func resumeRunE(confirmed bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(flagAddr, flagToken)
		if err != nil {
			return err
		}
		env, err := c.command(cmd.Context(), envelope.Request{
			Resume: &envelope.Resume{Token: args[0], Confirmed: confirmed},
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), env)
	}
}
