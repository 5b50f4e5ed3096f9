package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/confirm"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func askCmd() *cobra.Command {
	var (
		confirmTok string
		cancelTok  string
		autoYes    bool
	)
	cmd := &cobra.Command{
		Use:   "ask [text]",
		Short: "Run one command through the pipeline and print the envelope",
		Long: `Ask runs a single command in programmatic mode and prints the response
envelope as JSON. Nothing prompts: unresolved parameters come back as a
missing_parameters envelope and critical operations come back as a
confirmation_required envelope.

Confirmation tokens are held by the process that minted them, so
--confirm and --cancel resolve tokens from the same serving process
(vmmanctl talks to a running daemon). For one-shot critical operations
pass --yes to approve in place.`,
		Example: `  vmman ask "list servers"
  vmman ask --yes "delete server web-01"
  vmman ask --cancel 1b442c73-9697-4b6c-b541-3ceb2cbc8abd`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := askRequest(args, confirmTok, cancelTok)
			if err != nil {
				return err
			}

			rt, err := app.Build(cmd.Context(), runParams(), app.ModeLocal)
			if err != nil {
				return err
			}
			if err := rt.Start(); err != nil {
				rt.Close()
				return err
			}
			defer rt.Close()

			var opts pipeline.HandleOptions
			if autoYes {
				opts.Prompter = confirm.PrompterFunc(
					func(context.Context, string, string) (bool, error) { return true, nil },
				)
			}

			resp := rt.Pipeline.Handle(cmd.Context(), req, opts)
			return printEnvelope(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&confirmTok, "confirm", "", "resume a pending confirmation token")
	cmd.Flags().StringVar(&cancelTok, "cancel", "", "cancel a pending confirmation token")
	cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "approve critical operations without deferring")
	return cmd
}

// askRequest maps the positional text and the resume flags onto a request.
func askRequest(args []string, confirmTok, cancelTok string) (envelope.Request, error) {
	switch {
	case confirmTok != "" && cancelTok != "":
		return envelope.Request{}, errors.New("--confirm and --cancel are mutually exclusive")
	case confirmTok != "":
		return envelope.Request{Resume: &envelope.Resume{Token: confirmTok, Confirmed: true}}, nil
	case cancelTok != "":
		return envelope.Request{Resume: &envelope.Resume{Token: cancelTok, Confirmed: false}}, nil
	case len(args) == 0 || strings.TrimSpace(args[0]) == "":
		return envelope.Request{}, errors.New("provide command text, or --confirm/--cancel with a token")
	default:
		return envelope.Request{Text: args[0]}, nil
	}
}

func printEnvelope(w io.Writer, resp envelope.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
