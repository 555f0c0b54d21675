// ABOUTME: Sign-in, sign-out and session lookup for the console
// ABOUTME: Exchanges an identity-provider token for a server-side session cookie

package webadmin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/store"
)

// storeSessions resolves session cookies against the store.
type storeSessions struct {
	store store.Store
}

func (s storeSessions) LookupSession(ctx context.Context, sessionID string) (*auth.Identity, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	role, ok := auth.ParseRole(sess.Role)
	if !ok {
		return nil, auth.ErrNoSession
	}

	return &auth.Identity{
		Subject:   sess.Subject,
		Role:      role,
		Name:      sess.Name,
		Email:     sess.Email,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// currentIdentity returns the identity behind the session cookie, if any.
func (c *Console) currentIdentity(r *http.Request) *auth.Identity {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	id, err := storeSessions{store: c.store}.LookupSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return id
}

// handleRoot sends the browser to its shell, or to sign-in.
func (c *Console) handleRoot(w http.ResponseWriter, r *http.Request) {
	if id := c.currentIdentity(r); id != nil {
		http.Redirect(w, r, auth.HomePath(id.Role), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// signInLink is the identity provider URL that returns to our callback.
func (c *Console) signInLink() string {
	if c.config.SignInURL == "" {
		return ""
	}
	u, err := url.Parse(c.config.SignInURL)
	if err != nil {
		return c.config.SignInURL
	}
	q := u.Query()
	q.Set("redirect_url", c.config.BaseURL+"/auth/callback")
	u.RawQuery = q.Encode()
	return u.String()
}

// handleLoginPage renders the sign-in page
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if id := c.currentIdentity(r); id != nil {
		http.Redirect(w, r, auth.HomePath(id.Role), http.StatusSeeOther)
		return
	}
	c.renderLogin(w, http.StatusOK, "")
}

// handleCallback verifies the returned token and opens a session
func (c *Console) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		c.renderLogin(w, http.StatusBadRequest, "Sign-in did not return a token")
		return
	}

	id, err := c.verifier.Verify(token)
	if err != nil {
		c.logger.Warn("rejected sign-in token", "error", err)
		c.renderLogin(w, http.StatusUnauthorized, "Sign-in failed, please try again")
		return
	}

	if err := c.createSession(w, r, id, token); err != nil {
		c.logger.Error("failed to create session", "error", err)
		c.renderLogin(w, http.StatusInternalServerError, "An error occurred")
		return
	}

	c.record(r.Context(), id, store.ActivityEntry{
		Action:     store.ActivitySignIn,
		TargetType: "session",
		TargetID:   id.Subject,
		Summary:    "Signed in as " + string(id.Role),
	})

	c.logger.Info("sign-in successful", "subject", id.Subject, "role", id.Role)
	http.Redirect(w, r, auth.HomePath(id.Role), http.StatusSeeOther)
}

// createSession stores a session for id and sets the cookie. The session
// never outlives the token it was created from.
func (c *Console) createSession(w http.ResponseWriter, r *http.Request, id *auth.Identity, token string) error {
	sessionID, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	now := time.Now()
	expires := now.Add(c.config.SessionTTL)
	if !id.ExpiresAt.IsZero() && id.ExpiresAt.Before(expires) {
		expires = id.ExpiresAt
	}

	sess := &store.Session{
		ID:        sessionID,
		Subject:   id.Subject,
		Role:      string(id.Role),
		Name:      id.Name,
		Email:     id.Email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := c.store.CreateSession(r.Context(), sess); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// handleLogout ends the session and forgets the user's cached reads
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Don't block logout on a stale token
		if !c.validateCSRF(r) {
			c.logger.Warn("logout request with invalid CSRF token")
		}
	}

	id := identity(r)
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := c.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			c.logger.Error("failed to delete session", "error", err)
		}
	}
	dropped := c.queries.Cache().DropScope(id.Subject)

	c.record(r.Context(), id, store.ActivityEntry{
		Action:     store.ActivitySignOut,
		TargetType: "session",
		TargetID:   id.Subject,
		Summary:    "Signed out",
	})
	c.logger.Info("signed out", "subject", id.Subject, "cache_entries_dropped", dropped)

	for _, name := range []string{SessionCookieName, CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
