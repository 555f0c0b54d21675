// ABOUTME: Console server orchestrator wiring config, store, backend client and web routes
// ABOUTME: Owns the HTTP listener, health endpoints, session sweeping and shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/assets"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/config"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
	"github.com/2389/bloodlink-console/internal/webadmin"
)

// sessionSweepInterval is how often expired sessions are purged.
var sessionSweepInterval = 10 * time.Minute

// Gateway runs the BloodLink console server.
type Gateway struct {
	config     *config.Config
	store      store.Store
	backend    *api.Client
	queries    *query.Client
	console    *webadmin.Console
	httpServer *http.Server
	logger     *slog.Logger

	// sweepDone is closed when the session sweeper exits
	sweepDone chan struct{}
	stopSweep context.CancelFunc
	closeOnce sync.Once
}

// initStore creates the SQLite store, honouring BLOODLINK_DB_PATH.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("BLOODLINK_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	backend := api.New(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		api.WithTokenSource(auth.BearerToken),
		api.WithLogger(logger),
	)

	queries := query.NewClient(
		query.NewCache(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		query.NewNotifier(logger),
		logger,
	)

	verifier := auth.NewJWTVerifier([]byte(cfg.Identity.JWTSecret))

	httpLogger := logger.With("component", "http")
	gw := &Gateway{
		config:  cfg,
		store:   s,
		backend: backend,
		queries: queries,
		logger:  logger.With("component", "gateway"),
	}

	gw.console = webadmin.New(backend, queries, s, verifier, webadmin.Config{
		BaseURL:    cfg.Server.BaseURL,
		SignInURL:  cfg.Identity.SignInURL,
		SessionTTL: cfg.Identity.SessionTTL,
	})

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /health", gw.handleHealth)
	mux.HandleFunc("GET /health/ready", gw.handleReady)

	mux.Handle("GET /static/", http.StripPrefix("/static/", assets.FileServer()))

	gw.console.RegisterRoutes(mux)
	gw.logger.Info("console routes registered", "base_url", cfg.Server.BaseURL, "backend", cfg.Backend.BaseURL)

	gw.httpServer = &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: chain(mux,
			requestID(),
			accessLog(httpLogger),
			recoverPanic(httpLogger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// event streams never go idle, so end them when shutdown starts
	gw.httpServer.RegisterOnShutdown(queries.Notifier().Close)

	return gw, nil
}

// Handler returns the fully wrapped HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// setupTCPListener creates the HTTP listener.
func (g *Gateway) setupTCPListener() (net.Listener, error) {
	g.logger.Info("starting console", "http_addr", g.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// startServer serves HTTP in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// startSessionSweeper purges expired sessions until ctx is done.
func (g *Gateway) startSessionSweeper(ctx context.Context) {
	ctx, g.stopSweep = context.WithCancel(ctx)
	g.sweepDone = make(chan struct{})

	go func() {
		defer close(g.sweepDone)
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.sweepSessions(ctx)
			}
		}
	}()
}

func (g *Gateway) sweepSessions(ctx context.Context) {
	n, err := g.store.DeleteExpiredSessions(ctx)
	if err != nil {
		g.logger.Warn("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		g.logger.Debug("expired sessions removed", "count", n)
	}
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the console server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupTCPListener()
	if err != nil {
		return err
	}

	g.startSessionSweeper(ctx)
	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the server and releases resources. The query client is
// closed only after in-flight requests have drained.
func (g *Gateway) Shutdown(ctx context.Context) error {
	var errs []error
	g.closeOnce.Do(func() {
		g.logger.Info("shutting down console")

		if g.stopSweep != nil {
			g.stopSweep()
			<-g.sweepDone
		}

		errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
		g.queries.Close()
		errs = appendCloseError(errs, "store close", g.store.Close())
	})

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := g.store.Ping(r.Context()); err != nil {
		g.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
