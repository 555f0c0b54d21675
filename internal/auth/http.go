// ABOUTME: HTTP middleware resolving the session cookie into an Identity
// ABOUTME: Also routes each role to its shell and guards shell routes by role

package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoSession is returned by a SessionLookup when the cookie names no live session.
var ErrNoSession = errors.New("no session")

// SessionLookup resolves the identity behind a session id.
type SessionLookup interface {
	LookupSession(ctx context.Context, sessionID string) (*Identity, error)
}

// HomePath is the shell an identity lands in after sign-in.
func HomePath(role Role) string {
	if role == RoleAdmin {
		return "/admin/"
	}
	return "/staff/"
}

// redirect sends the browser to path. htmx requests get HX-Redirect so the
// whole page navigates instead of swapping a fragment.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// SessionMiddleware attaches the Identity for the session cookie to the
// request context. Requests without a live session are sent to loginPath.
func SessionMiddleware(cookieName string, sessions SessionLookup, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				redirect(w, r, loginPath)
				return
			}

			id, err := sessions.LookupSession(r.Context(), cookie.Value)
			if err != nil || id == nil {
				redirect(w, r, loginPath)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through identities holding one of roles. Others are sent
// to their own shell on reads and refused on writes. Must be used after
// SessionMiddleware.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				redirect(w, r, HomePath(id.Role))
				return
			}
			http.Error(w, "role not permitted", http.StatusForbidden)
		})
	}
}
