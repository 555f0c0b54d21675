// ABOUTME: Web console package for BloodLink staff and administrators
// ABOUTME: Wires sessions, CSRF, role-guarded shells and every console route

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "bloodlink_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "bloodlink_csrf"

	// DefaultSessionTTL applies when Config.SessionTTL is zero
	DefaultSessionTTL = 12 * time.Hour
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds console configuration
type Config struct {
	// BaseURL is the external URL of the console, used for the sign-in callback
	BaseURL string

	// SignInURL is the identity provider's hosted sign-in page
	SignInURL string

	// SessionTTL caps how long a browser session lasts
	SessionTTL time.Duration
}

// Console handles the console routes for both shells
type Console struct {
	backend  *api.Client
	queries  *query.Client
	store    store.Store
	verifier auth.TokenVerifier
	config   Config
	logger   *slog.Logger
	printer  *message.Printer
	sessions func(http.Handler) http.Handler
}

// New creates a new Console. The backend client must take its bearer token
// from auth.BearerToken so calls run as the signed-in user.
func New(backend *api.Client, queries *query.Client, s store.Store, verifier auth.TokenVerifier, cfg Config) *Console {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	c := &Console{
		backend:  backend,
		queries:  queries,
		store:    s,
		verifier: verifier,
		config:   cfg,
		logger:   slog.Default().With("component", "console"),
		printer:  message.NewPrinter(language.English),
	}
	c.sessions = auth.SessionMiddleware(SessionCookieName, storeSessions{store: s}, "/login")
	return c
}

// RegisterRoutes registers all console routes on the given mux
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	staff := c.guard(auth.RoleStaff, auth.RoleDoctor)
	admin := c.guard(auth.RoleAdmin)
	anyone := c.guard(auth.RoleAdmin, auth.RoleStaff, auth.RoleDoctor)

	// Public routes
	mux.HandleFunc("GET /{$}", c.handleRoot)
	mux.HandleFunc("GET /login", c.handleLoginPage)
	mux.HandleFunc("GET /auth/callback", c.handleCallback)

	// Any signed-in role
	mux.HandleFunc("POST /logout", anyone(c.handleLogout))
	mux.HandleFunc("GET /events", anyone(c.handleEvents))
	mux.HandleFunc("GET /help", anyone(c.handleHelp))
	mux.HandleFunc("GET /dialogs/{kind}/{id}", anyone(c.handleDialog))
	mux.HandleFunc("GET /campaigns/table", anyone(c.handleCampaignsTable))
	mux.HandleFunc("GET /blood-units/table", anyone(c.handleBloodUnitsTable))
	mux.HandleFunc("PATCH /profile", anyone(c.handleProfileUpdate))

	// Admin shell
	mux.HandleFunc("GET /admin/{$}", admin(c.handleDashboard))
	mux.HandleFunc("GET /admin/stats", admin(c.handleDashboardStats))
	mux.HandleFunc("GET /admin/activity", admin(c.handleActivityList))
	mux.HandleFunc("GET /admin/campaigns", admin(c.handleCampaignsPage))
	mux.HandleFunc("GET /admin/blood-stock", admin(c.handleBloodStockPage))
	mux.HandleFunc("GET /admin/profile", admin(c.handleProfilePage))
	mux.HandleFunc("POST /campaigns", admin(c.handleCampaignCreate))
	mux.HandleFunc("PATCH /campaigns/{id}", admin(c.handleCampaignUpdate))

	// Staff shell
	mux.HandleFunc("GET /staff/{$}", staff(c.handleCampaignsPage))
	mux.HandleFunc("GET /staff/campaigns/{id}/donation-requests", staff(c.handleCampaignDonationsPage))
	mux.HandleFunc("GET /staff/donations", staff(c.handleDonationsPage))
	mux.HandleFunc("GET /staff/blood-units", staff(c.handleBloodUnitsPage))
	mux.HandleFunc("GET /staff/blood-unit-history", staff(c.handleActionsPage))
	mux.HandleFunc("GET /staff/profile", staff(c.handleProfilePage))
	mux.HandleFunc("GET /campaigns/{id}/donation-requests/table", staff(c.handleCampaignDonationsTable))
	mux.HandleFunc("GET /donation-requests/table", staff(c.handleDonationsTable))
	mux.HandleFunc("PATCH /donation-requests/{id}/status", staff(c.handleDonationStatusUpdate))
	mux.HandleFunc("GET /blood-unit-actions/table", staff(c.handleActionsTable))
	mux.HandleFunc("POST /blood-units", staff(c.handleBloodUnitCreate))
	mux.HandleFunc("PATCH /blood-units/{id}", staff(c.handleBloodUnitUpdate))
}

// guard builds a wrapper that requires a live session holding one of roles.
func (c *Console) guard(roles ...auth.Role) func(http.HandlerFunc) http.HandlerFunc {
	requireRole := auth.RequireRole(roles...)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return c.sessions(requireRole(next)).ServeHTTP
	}
}

// identity returns the signed-in identity. Only valid behind guard.
func identity(r *http.Request) *auth.Identity {
	return auth.MustFromContext(r.Context())
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		c.logger.Error("failed to generate CSRF token", "error", err)
		token = ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the token from the form or the htmx header against the cookie
func (c *Console) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		token = r.FormValue("csrf_token")
	}

	return token != "" && token == cookie.Value
}

// scope keeps each user's cached reads apart.
func scope(r *http.Request) string {
	return identity(r).Subject
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
