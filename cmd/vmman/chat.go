package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/confirm"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive command session",
		Long: `Chat reads commands line by line and runs them through the pipeline in
interactive mode: missing parameters are asked for with input forms and
critical operations need an explicit yes before they run.`,
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

			return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), rt.Pipeline)
		},
	}
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, pipe app.CommandHandler) error {
	opts := pipeline.HandleOptions{
		Solicitor: terminalSolicitor(),
		Prompter:  terminalPrompter(),
	}

	fmt.Fprintln(out, `Type a command ("list servers", "create a volume named logs with 20 GB").`)
	fmt.Fprintln(out, `Type "exit" to leave.`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		renderResponse(out, pipe.Handle(ctx, envelope.Request{Text: line}, opts))
	}
}

// terminalSolicitor asks for one parameter with an input form. The answer
// goes back to the resolver untouched, so "default" and empty answers keep
// their pipeline meaning.
func terminalSolicitor() resolve.Solicitor {
	return resolve.SolicitorFunc(func(ctx context.Context, op capability.Operation, param capability.ParamSpec) (string, error) {
		desc := param.Doc
		if param.Default != nil {
			desc = fmt.Sprintf("%s (answer \"default\" for %v)", desc, param.Default)
		}

		var answer string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s needs %s", op.Name, param.Name)).
				Description(desc).
				Value(&answer),
		))
		if err := form.RunWithContext(ctx); err != nil {
			return "", err
		}
		return answer, nil
	})
}

// terminalPrompter renders the consent form for critical operations.
func terminalPrompter() confirm.Prompter {
	return confirm.PrompterFunc(func(ctx context.Context, action, details string) (bool, error) {
		var approved bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Execute %s?", action)).
				Description(details).
				Affirmative("Yes").
				Negative("No").
				Value(&approved),
		))
		if err := form.RunWithContext(ctx); err != nil {
			return false, err
		}
		return approved, nil
	})
}

// renderResponse prints an envelope for a person instead of a program.
func renderResponse(out io.Writer, resp envelope.Response) {
	switch resp.Status {
	case envelope.StatusSuccess:
		fmt.Fprintf(out, "done in %d ms\n", resp.ElapsedMS)
		if resp.Result != nil {
			if data, err := json.MarshalIndent(resp.Result, "", "  "); err == nil {
				fmt.Fprintln(out, string(data))
			}
		}
	case envelope.StatusMissingParameters:
		fmt.Fprintf(out, "%s still needs:\n", resp.FunctionName)
		for _, m := range resp.Missing {
			fmt.Fprintf(out, "  %s (%s) %s\n", m.Name, m.Type, m.Doc)
		}
	case envelope.StatusClarificationNeeded:
		fmt.Fprintln(out, resp.Message)
	case envelope.StatusConfirmationRequired:
		fmt.Fprintf(out, "%s is waiting for confirmation (token %s)\n", resp.Action, resp.ConfirmationToken)
	case envelope.StatusError:
		fmt.Fprintf(out, "error: %s\n", resp.Message)
	}
}
