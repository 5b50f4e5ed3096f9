// Package mcpserver exposes the command pipeline to MCP clients over
// stdio: a command tool for free-form text, a confirm_command tool for
// resolving pending confirmations, and a list_operations tool for the
// catalog. Tool results carry the same JSON envelope the gateway serves.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// CommandHandler runs one request through the pipeline.
type CommandHandler interface {
	Handle(ctx context.Context, req envelope.Request, opts pipeline.HandleOptions) envelope.Response
}

// Options configures the MCP server.
type Options struct {
	Pipeline CommandHandler
	Registry *capability.Registry
	Version  string
	Logger   *slog.Logger
}

// tools carries the shared dependencies behind the tool handlers.
type tools struct {
	pipe     CommandHandler
	registry *capability.Registry
	logger   *slog.Logger
}

// New assembles an MCP server with the vmman tools registered.
func New(opts Options) (*server.MCPServer, error) {
	if opts.Pipeline == nil {
		return nil, errors.New("mcpserver: Pipeline is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("mcpserver: Registry is required")
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := &tools{pipe: opts.Pipeline, registry: opts.Registry, logger: opts.Logger}

	s := server.NewMCPServer(
		"vmman",
		opts.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	s.AddTool(commandTool(), t.handleCommand)
	s.AddTool(confirmTool(), t.handleConfirm)
	s.AddTool(listOperationsTool(), t.handleListOperations)

	return s, nil
}

// ServeStdio serves the MCP protocol on stdin/stdout until the client
// disconnects or ctx is canceled.
func ServeStdio(ctx context.Context, s *server.MCPServer) error {
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

func commandTool() mcp.Tool {
	return mcp.NewTool("command",
		mcp.WithDescription("Run a natural-language cloud command through the pipeline. "+
			"Returns a JSON envelope whose status field is one of: success, "+
			"missing_parameters, clarification_needed, confirmation_required, error. "+
			"A confirmation_required envelope carries a token to pass to confirm_command."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The command in plain language, e.g. \"create a server named web-01 with flavor m1.small\"."),
		),
	)
}

func confirmTool() mcp.Tool {
	return mcp.NewTool("confirm_command",
		mcp.WithDescription("Resolve a pending confirmation returned by the command tool. "+
			"Confirmed true executes the suspended operation; false cancels it. "+
			"Each token is redeemable exactly once."),
		mcp.WithString("token",
			mcp.Required(),
			mcp.Description("The confirmation_token from a confirmation_required envelope."),
		),
		mcp.WithBoolean("confirmed",
			mcp.Description("Whether to proceed with the suspended operation. Defaults to true."),
			mcp.DefaultBool(true),
		),
	)
}

func listOperationsTool() mcp.Tool {
	return mcp.NewTool("list_operations",
		mcp.WithDescription("List every operation the backend supports, with parameter "+
			"schemas and whether the operation requires confirmation."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *tools) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t.logger.Debug("mcp command", "text", text)
	resp := t.pipe.Handle(ctx, envelope.Request{Text: text}, pipeline.HandleOptions{})
	return envelopeResult(resp)
}

func (t *tools) handleConfirm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := request.RequireString("token")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	confirmed := request.GetBool("confirmed", true)

	t.logger.Debug("mcp confirm", "token", token, "confirmed", confirmed)
	resp := t.pipe.Handle(ctx, envelope.Request{
		Resume: &envelope.Resume{Token: token, Confirmed: confirmed},
	}, pipeline.HandleOptions{})
	return envelopeResult(resp)
}

// operationJSON is the catalog render shape for MCP clients.
type operationJSON struct {
	Name     string      `json:"name"`
	Doc      string      `json:"doc"`
	Critical bool        `json:"critical,omitempty"`
	Params   []paramJSON `json:"params,omitempty"`
}

type paramJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
	Doc      string `json:"doc,omitempty"`
}

func (t *tools) handleListOperations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ops := t.registry.Operations()
	out := make([]operationJSON, 0, len(ops))
	for _, op := range ops {
		oj := operationJSON{
			Name:     op.Name,
			Doc:      op.Doc,
			Critical: op.Critical,
			Params:   make([]paramJSON, 0, len(op.Params)),
		}
		for _, p := range op.Params {
			oj.Params = append(oj.Params, paramJSON{
				Name:     p.Name,
				Type:     string(p.Type),
				Required: p.Required,
				Default:  p.Default,
				Doc:      p.Doc,
			})
		}
		out = append(out, oj)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshal operations: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// envelopeResult renders the envelope as JSON text content. Every
// terminal status is a usable tool result; IsError is set only for the
// pipeline's error status so clients notice failed commands.
func envelopeResult(resp envelope.Response) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshal envelope: %w", err)
	}
	if resp.Status == envelope.StatusError {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

const instructions = `vmman manages a cloud project through natural language.

Run commands with the command tool, passing plain text such as
"list all servers" or "create a 20GB volume named data-01". The result
is a JSON envelope; branch on its status field:

- success: the operation ran; result holds the outcome.
- missing_parameters: the operation needs the listed parameters. Gather
  them and re-issue the command with the values included in the text.
- clarification_needed: the text did not match an operation. Rephrase.
- confirmation_required: the operation is destructive and is suspended
  behind confirmation_token. Ask the user, then call confirm_command
  with the token and their verdict. Tokens expire and are single-use.
- error: the operation failed; message explains why.

Use list_operations to see what the backend supports before composing
commands. Never invent parameter names; use the ones the schemas name.`
