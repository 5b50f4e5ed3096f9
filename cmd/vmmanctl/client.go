package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// requestTimeout bounds one HTTP round trip. Command requests ride out
// the oracle call server-side, so this stays well above the gateway's
// write timeout.
const requestTimeout = 60 * time.Second

// client talks to one gateway over HTTP. The WebSocket session in watch
// shares the address handling but dials its own connection.
type client struct {
	base  *url.URL
	token string
	hc    *http.Client
}

// newClient parses the address flag. A bare host:port gets the http
// scheme; a full URL passes through so TLS-terminated gateways work.
func newClient(addr, token string) (*client, error) {
	raw := addr
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway address %q: %w", addr, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid gateway address %q: no host", addr)
	}
	return &client{
		base:  base,
		token: token,
		hc:    &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

// wsURL rewrites the base URL onto the WebSocket scheme for /ws.
func (c *client) wsURL() string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.JoinPath("/ws").String()
}

func (c *client) header() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// do sends one JSON round trip. A nil body sends an empty request; a
// nil out discards the response body.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// command posts one request envelope. Every pipeline outcome arrives as
// an envelope under HTTP 200; any other status is a transport failure.
func (c *client) command(ctx context.Context, req envelope.Request) (envelope.Response, error) {
	var env envelope.Response
	if err := c.do(ctx, http.MethodPost, "/api/command", req, &env); err != nil {
		return envelope.Response{}, err
	}
	return env, nil
}

// getJSON fetches path and returns the decoded body untyped, so the
// output mirrors the wire exactly.
func (c *client) getJSON(ctx context.Context, path string) (any, error) {
	var out any
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// httpError summarizes a non-200 response, carrying a snippet of the
// body since the gateway writes its reason there.
func httpError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, msg)
}

// printJSON writes v as indented JSON, the output format of every
// vmmanctl command.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
