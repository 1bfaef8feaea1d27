package vmservice

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/net/websocket"
)

// fakeVM answers getVM and reloadSources. It emits a stream event before
// each reply so clients must match responses by id.
func fakeVM(t *testing.T, isolates []Isolate, reload map[string]any) *httptest.Server {
	t.Helper()
	handler := websocket.Handler(func(ws *websocket.Conn) {
		for {
			var frame string
			if err := websocket.Message.Receive(ws, &frame); err != nil {
				return
			}
			var req request
			if err := json.Unmarshal([]byte(frame), &req); err != nil {
				return
			}
			_ = websocket.Message.Send(ws, `{"jsonrpc":"2.0","method":"streamNotify","params":{}}`)

			resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
			switch req.Method {
			case "getVM":
				resp["result"] = map[string]any{"type": "VM", "name": "vm", "isolates": isolates}
			case "reloadSources":
				params, _ := req.Params.(map[string]any)
				if len(isolates) == 0 || params["isolateId"] != isolates[0].ID {
					resp["error"] = map[string]any{"code": 106, "message": "isolate must be reloadable"}
				} else {
					resp["result"] = reload
				}
			default:
				resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
			}
			b, _ := json.Marshal(resp)
			_ = websocket.Message.Send(ws, string(b))
		}
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestWebsocketURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"http://127.0.0.1:50300/abc=/", "ws://127.0.0.1:50300/abc=/ws"},
		{"http://127.0.0.1:50300/abc=", "ws://127.0.0.1:50300/abc=/ws"},
		{"https://host/token/", "wss://host/token/ws"},
		{"ws://127.0.0.1:50300/abc=/ws", "ws://127.0.0.1:50300/abc=/ws"},
		{" http://127.0.0.1:1/x=/\n", "ws://127.0.0.1:1/x=/ws"},
	}
	for _, tc := range cases {
		got, err := WebsocketURL(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.in, got, tc.want)
		}
	}
	if _, err := WebsocketURL("ftp://host/"); err == nil {
		t.Fatalf("expected error for ftp scheme")
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	srv := fakeVM(t, []Isolate{{ID: "isolates/1", Name: "main"}, {ID: "isolates/2"}}, map[string]any{"type": "ReloadReport", "success": true})
	iso, err := Reload(testContext(t), srv.URL+"/tok=/")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if iso.ID != "isolates/1" {
		t.Fatalf("isolate: got %q want %q", iso.ID, "isolates/1")
	}
}

func TestReloadFailures(t *testing.T) {
	t.Parallel()

	srv := fakeVM(t, nil, nil)
	if _, err := Reload(testContext(t), srv.URL); !errors.Is(err, ErrNoIsolates) {
		t.Fatalf("got %v want %v", err, ErrNoIsolates)
	}

	srv = fakeVM(t, []Isolate{{ID: "isolates/1"}}, map[string]any{
		"type":    "ReloadReport",
		"success": false,
		"notices": []map[string]any{{"message": "compile error"}},
	})
	_, err := Reload(testContext(t), srv.URL)
	if !errors.Is(err, ErrReloadFailed) || !strings.Contains(err.Error(), "compile error") {
		t.Fatalf("got %v want %v", err, ErrReloadFailed)
	}
}

func TestCallRPCError(t *testing.T) {
	t.Parallel()

	srv := fakeVM(t, nil, nil)
	c, err := Dial(testContext(t), srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = c.Close() }()

	var rpcErr *RPCError
	if err := c.Call(testContext(t), "streamListen", nil, nil); !errors.As(err, &rpcErr) || rpcErr.Code != -32601 {
		t.Fatalf("got %v want method not found", err)
	}
}

func TestCallCancelWithoutDeadline(t *testing.T) {
	t.Parallel()

	// a service that reads requests and never answers
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		for {
			var frame string
			if err := websocket.Message.Receive(ws, &frame); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	c, err := Dial(testContext(t), srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	err = c.Call(ctx, "getVM", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v want %v", err, context.Canceled)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("call returned after %v", elapsed)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	urlFile := filepath.Join(dir, ".vm_url")
	if err := os.WriteFile(urlFile, []byte("http://127.0.0.1:1111/a=/\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	log := "Launching lib/main.dart\nA Dart VM Service on Linux is available at: http://127.0.0.1:2222/b=/\n"
	if err := os.WriteFile(filepath.Join(logDir, "run.output"), []byte(log), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	glob := filepath.Join(logDir, "*.output")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{"explicit", Source{URL: "http://h/x=/", URLFile: urlFile, LogGlob: glob}, "http://h/x=/"},
		{"file", Source{URLFile: urlFile, LogGlob: glob}, "http://127.0.0.1:1111/a=/"},
		{"log", Source{URLFile: filepath.Join(dir, "missing"), LogGlob: glob}, "http://127.0.0.1:2222/b=/"},
	}
	for _, tc := range cases {
		got, err := Discover(tc.src)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}

	if _, err := Discover(Source{LogGlob: filepath.Join(dir, "none", "*")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want %v", err, ErrNotFound)
	}
}
