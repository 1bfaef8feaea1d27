// Package vmservice triggers a hot reload through a Dart VM service
// websocket so a running app picks up a patched container.
package vmservice

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/net/websocket"
)

var (
	ErrNoIsolates   = errors.New("vmservice: VM reports no isolates")
	ErrReloadFailed = errors.New("vmservice: reload failed")
)

// RPCError is a JSON-RPC error object returned by the VM service.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("vmservice: rpc error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type Isolate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VM struct {
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Isolates []Isolate `json:"isolates"`
}

// ReloadReport is the result of reloadSources.
type ReloadReport struct {
	Success bool `json:"success"`
	Notices []struct {
		Message string `json:"message"`
	} `json:"notices,omitempty"`
}

// WebsocketURL turns the http URL printed by the VM service into its
// websocket endpoint.
func WebsocketURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("vmservice: parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		if strings.HasSuffix(u.Path, "/ws") {
			return u.String(), nil
		}
	default:
		return "", fmt.Errorf("vmservice: unsupported url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Client speaks JSON-RPC 2.0 over one websocket connection. It is not safe
// for concurrent use.
type Client struct {
	conn   *websocket.Conn
	nextID int
}

// Dial connects to the VM service at rawURL, which may be the http form.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	wsURL, err := WebsocketURL(rawURL)
	if err != nil {
		return nil, err
	}
	origin := "http://localhost/"
	cfg, err := websocket.NewConfig(wsURL, origin)
	if err != nil {
		return nil, fmt.Errorf("vmservice: %w", err)
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("vmservice: dial %s: %w", wsURL, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends method and decodes the matching result into out. Responses for
// other ids, such as stream events, are skipped.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	c.nextID++
	id := strconv.Itoa(c.nextID)
	payload, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return err
	}
	// cancellation closes the connection to unblock Receive; the client is
	// unusable afterwards
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	if err := websocket.Message.Send(c.conn, string(payload)); err != nil {
		return c.ioError(ctx, "send", method, err)
	}

	for {
		var frame string
		if err := websocket.Message.Receive(c.conn, &frame); err != nil {
			return c.ioError(ctx, "receive", method, err)
		}
		var resp response
		if err := json.Unmarshal([]byte(frame), &resp); err != nil {
			return fmt.Errorf("vmservice: decode %s: %w", method, err)
		}
		if resp.ID != id {
			continue
		}
		if resp.Error != nil {
			return resp.Error
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		return json.Unmarshal(resp.Result, out)
	}
}

func (c *Client) GetVM(ctx context.Context) (VM, error) {
	var vm VM
	err := c.Call(ctx, "getVM", nil, &vm)
	return vm, err
}

func (c *Client) ReloadSources(ctx context.Context, isolateID string) (ReloadReport, error) {
	var report ReloadReport
	err := c.Call(ctx, "reloadSources", map[string]string{"isolateId": isolateID}, &report)
	return report, err
}

// Reload asks the first isolate of the VM at rawURL to reload its sources
// and returns that isolate.
func Reload(ctx context.Context, rawURL string) (Isolate, error) {
	c, err := Dial(ctx, rawURL)
	if err != nil {
		return Isolate{}, err
	}
	defer func() { _ = c.Close() }()

	vm, err := c.GetVM(ctx)
	if err != nil {
		return Isolate{}, err
	}
	if len(vm.Isolates) == 0 {
		return Isolate{}, ErrNoIsolates
	}
	iso := vm.Isolates[0]
	report, err := c.ReloadSources(ctx, iso.ID)
	if err != nil {
		return iso, err
	}
	if !report.Success {
		msgs := make([]string, 0, len(report.Notices))
		for _, n := range report.Notices {
			msgs = append(msgs, n.Message)
		}
		return iso, fmt.Errorf("%w: %s", ErrReloadFailed, strings.Join(msgs, "; "))
	}
	return iso, nil
}

func (c *Client) ioError(ctx context.Context, op, method string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("vmservice: %s %s: %w", op, method, ctxErr)
	}
	return fmt.Errorf("vmservice: %s %s: %w", op, method, err)
}
