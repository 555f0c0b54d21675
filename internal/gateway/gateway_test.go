// ABOUTME: Tests for the console server lifecycle and health endpoints
// ABOUTME: Starts a real listener on a free port and drives it over HTTP

package gateway

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/2389/bloodlink-console/internal/assets"
	"github.com/2389/bloodlink-console/internal/config"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

// testConfig creates a minimal config for testing with an available port.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	httpListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find available HTTP port: %v", err)
	}
	httpAddr := httpListener.Addr().String()
	httpListener.Close()

	return &config.Config{
		Server: config.ServerConfig{
			HTTPAddr: httpAddr,
			BaseURL:  "http://" + httpAddr,
		},
		Backend: config.BackendConfig{
			BaseURL: "http://backend.test",
			Timeout: 5 * time.Second,
		},
		Identity: config.IdentityConfig{
			JWTSecret:  "test-secret-0123456789",
			SignInURL:  "https://id.test/sign-in",
			SessionTTL: time.Hour,
		},
		Database: config.DatabaseConfig{
			Path: ":memory:",
		},
		Cache: config.CacheConfig{
			TTL:        time.Minute,
			MaxEntries: 100,
		},
	}
}

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw, err := New(testConfig(t), testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = gw.Shutdown(context.Background()) })
	return gw
}

func TestNewUsesDatabasePathFromEnv(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "console.db")
	t.Setenv("BLOODLINK_DB_PATH", dbPath)

	cfg := testConfig(t)
	gw, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer gw.Shutdown(context.Background())

	if _, ok := gw.store.(*store.SQLiteStore); !ok {
		t.Fatalf("store type = %T, want *store.SQLiteStore", gw.store)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	gw := newTestGateway(t)

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("/health = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}

	rec = httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("/health/ready = %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadyFailsWhenStoreClosed(t *testing.T) {
	gw := newTestGateway(t)
	if err := gw.store.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/health/ready = %d, want 503", rec.Code)
	}
}

func TestStaticAssetsServed(t *testing.T) {
	gw := newTestGateway(t)

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, assets.Path("console.css"), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("static = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestConsoleRoutesRegistered(t *testing.T) {
	gw := newTestGateway(t)

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/login = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "https://id.test/sign-in") {
		t.Error("login page should link to the identity provider")
	}

	rec = httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("/admin/ without session = %d, want 303", rec.Code)
	}
}

func TestSweepSessionsRemovesExpired(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	now := time.Now()
	expired := &store.Session{ID: "old", Subject: "user-1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	live := &store.Session{ID: "new", Subject: "user-2", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	for _, s := range []*store.Session{expired, live} {
		if err := gw.store.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	gw.sweepSessions(ctx)

	if _, err := gw.store.GetSession(ctx, "old"); err == nil {
		t.Error("expired session should be gone")
	}
	if _, err := gw.store.GetSession(ctx, "new"); err != nil {
		t.Errorf("live session should remain: %v", err)
	}
}

func TestRunServesUntilCanceled(t *testing.T) {
	cfg := testConfig(t)
	gw, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	url := "http://" + cfg.Server.HTTPAddr + "/health"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestShutdownEndsEventStreams(t *testing.T) {
	gw := newTestGateway(t)

	events, _ := gw.queries.Notifier().Subscribe(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := gw.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case _, open := <-events:
		if open {
			t.Error("expected event channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("event stream still open after shutdown")
	}

	// a mutation racing shutdown publishes into a closed notifier
	if _, err := gw.queries.Mutate(context.Background(), query.Mutation{
		Name: "campaign.update",
		Run:  func(context.Context) error { return nil },
	}); err != nil {
		t.Errorf("Mutate after shutdown: %v", err)
	}
}

func TestRunFailsWhenAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Server.HTTPAddr = ln.Addr().String()
	gw, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer gw.Shutdown(context.Background())

	if err := gw.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
