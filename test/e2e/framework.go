package e2e

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arianaariaei/PyThreadServe/internal/accesslog"
	"github.com/arianaariaei/PyThreadServe/internal/admission"
	"github.com/arianaariaei/PyThreadServe/internal/files"
	"github.com/arianaariaei/PyThreadServe/internal/logger"
	"github.com/arianaariaei/PyThreadServe/internal/server"
	"github.com/arianaariaei/PyThreadServe/pkg/config"
	"github.com/arianaariaei/PyThreadServe/pkg/metrics"
)

// TestServerConfig holds configuration for the test server. This is distinct
// from pkg/config.ServerConfig; it describes a throwaway instance wired the
// same way the binary wires a real one.
type TestServerConfig struct {
	StoreType          string // "filesystem", "memory" or "badger"
	Workers            int
	MaxConcurrentPosts int
	UploadDelay        time.Duration
}

// TestServer runs a complete server instance against a temporary store and
// access log.
type TestServer struct {
	t      testing.TB
	server *server.Server
	cancel context.CancelFunc
	done   chan error

	AccessLogPath string
}

// StartTestServer wires and starts a full server the way cmd/threadserve
// does: store factory, admission limiter, access log, worker pool. The
// server listens on an ephemeral port and is torn down via t.Cleanup.
func StartTestServer(t testing.TB, cfg TestServerConfig) *TestServer {
	t.Helper()

	logger.SetLevel("ERROR") // keep tests quiet

	if cfg.StoreType == "" {
		cfg.StoreType = "filesystem"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 5
	}
	if cfg.MaxConcurrentPosts == 0 {
		cfg.MaxConcurrentPosts = 5
	}

	tempDir := t.TempDir()

	contentCfg := &config.ContentConfig{
		Type:       cfg.StoreType,
		Filesystem: map[string]any{"path": filepath.Join(tempDir, "content")},
		Badger:     map[string]any{"in_memory": true},
	}

	ctx, cancel := context.WithCancel(context.Background())

	store, err := config.CreateContentStore(ctx, contentCfg)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create content store: %v", err)
	}

	logPath := filepath.Join(tempDir, "server.log")
	accessLog, err := accesslog.Open(logPath)
	if err != nil {
		cancel()
		t.Fatalf("Failed to open access log: %v", err)
	}

	srv := server.New(server.Config{
		Host:    "127.0.0.1",
		Port:    0,
		Workers: cfg.Workers,
	},
		files.NewService(store, cfg.UploadDelay),
		admission.New(cfg.MaxConcurrentPosts),
		accessLog,
		metrics.NewHTTPMetrics(),
	)

	if err := srv.Listen(); err != nil {
		cancel()
		t.Fatalf("Failed to listen: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	ts := &TestServer{
		t:             t,
		server:        srv,
		cancel:        cancel,
		done:          done,
		AccessLogPath: logPath,
	}

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("Server did not shut down within 10s")
		}
		_ = accessLog.Close()
		_ = store.Close()
	})

	return ts
}

// Addr returns the server's listen address.
func (ts *TestServer) Addr() string {
	return ts.server.Addr().String()
}

// Response is a parsed HTTP response from the server.
type Response struct {
	Status  int
	Headers map[string]string
	Body    string
}

// Do sends a raw request over a fresh TCP connection and parses the
// response. The connection is closed before returning.
func (ts *TestServer) Do(raw string) Response {
	ts.t.Helper()

	conn, err := net.DialTimeout("tcp", ts.Addr(), 5*time.Second)
	if err != nil {
		ts.t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write([]byte(raw)); err != nil {
		ts.t.Fatalf("Failed to write request: %v", err)
	}

	return parseResponse(ts.t, bufio.NewReader(conn))
}

// Get issues a GET for the given path.
func (ts *TestServer) Get(path string) Response {
	ts.t.Helper()
	return ts.Do(fmt.Sprintf("GET %s HTTP/1.0\r\n\r\n", path))
}

// Post uploads body to the given path with a Content-Length header.
func (ts *TestServer) Post(path, body string) Response {
	ts.t.Helper()
	return ts.Do(fmt.Sprintf("POST %s HTTP/1.0\r\nContent-Length: %d\r\n\r\n%s",
		path, len(body), body))
}

func parseResponse(t testing.TB, r *bufio.Reader) Response {
	t.Helper()

	statusLine, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("Failed to read status line: %v", err)
	}

	var resp Response
	if _, err := fmt.Sscanf(statusLine, "HTTP/1.0 %d", &resp.Status); err != nil {
		t.Fatalf("Malformed status line %q: %v", statusLine, err)
	}

	resp.Headers = make(map[string]string)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("Failed to read header line: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if key, value, ok := strings.Cut(line, ": "); ok {
			resp.Headers[strings.ToLower(key)] = value
		}
	}

	var body strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		body.Write(buf[:n])
		if err != nil {
			break
		}
	}
	resp.Body = body.String()

	return resp
}
