package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive command session over the gateway WebSocket",
		Long: `Dials /ws and holds the connection for a command session. Each input
line is sent as one command and the response envelope is printed as JSON.

Critical operations come back as confirmation_required envelopes; resume
them in the same session with /confirm <token> or /cancel <token>. Type
exit or press Ctrl-D to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(flagAddr, flagToken)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runWatch drives one WebSocket session: a line in, an envelope out.
// The gateway reads frames sequentially, so each command completes
// before the next line is sent.
func runWatch(ctx context.Context, c *client, in io.Reader, out io.Writer) error {
	conn, resp, err := websocket.Dial(ctx, c.wsURL(), &websocket.DialOptions{
		HTTPHeader: c.header(),
	})
	if err != nil {
		if resp != nil {
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			if resp.StatusCode == http.StatusUnauthorized {
				return errors.New("gateway rejected the token")
			}
		}
		return fmt.Errorf("dial %s: %w", c.wsURL(), err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	fmt.Fprintf(out, "Connected to %s. Type a command, /confirm <token>, /cancel <token>, or exit.\n", c.base.Host)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		req, err := watchRequest(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}

		var env envelope.Response
		if err := json.Unmarshal(frame, &env); err != nil {
			return fmt.Errorf("decode envelope: %w", err)
		}
		if err := printJSON(out, env); err != nil {
			return err
		}
	}
}

// watchRequest turns one session line into a request. Lines starting
// with /confirm or /cancel resume a parked operation; anything else is
// command text.
func watchRequest(line string) (envelope.Request, error) {
	switch {
	case strings.HasPrefix(line, "/confirm"):
		token := strings.TrimSpace(strings.TrimPrefix(line, "/confirm"))
		if token == "" {
			return envelope.Request{}, errors.New("usage: /confirm <token>")
		}
		return envelope.Request{Resume: &envelope.Resume{Token: token, Confirmed: true}}, nil
	case strings.HasPrefix(line, "/cancel"):
		token := strings.TrimSpace(strings.TrimPrefix(line, "/cancel"))
		if token == "" {
			return envelope.Request{}, errors.New("usage: /cancel <token>")
		}
		return envelope.Request{Resume: &envelope.Resume{Token: token, Confirmed: false}}, nil
	default:
		return envelope.Request{Text: line}, nil
	}
}
