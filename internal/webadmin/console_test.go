// ABOUTME: Shared test harness for console handlers
// ABOUTME: Wires a fake backend, a temp SQLite store and signed-in sessions per role

package webadmin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/api/apitest"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

const (
	testSecret = "test-secret-0123456789"
	testCSRF   = "csrf-test-token"
)

type harness struct {
	t        *testing.T
	backend  *apitest.Backend
	store    *store.SQLiteStore
	queries  *query.Client
	verifier *auth.JWTVerifier
	console  *Console
	mux      *http.ServeMux
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := apitest.NewBackend(t)

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	client := api.New(backend.URL(), 5*time.Second, api.WithTokenSource(auth.BearerToken))
	queries := query.NewClient(query.NewCache(time.Minute, 100), query.NewNotifier(nil), nil)
	t.Cleanup(queries.Close)

	verifier := auth.NewJWTVerifier([]byte(testSecret))
	c := New(client, queries, s, verifier, Config{
		BaseURL:   "http://console.test",
		SignInURL: "https://id.test/sign-in",
	})

	mux := http.NewServeMux()
	c.RegisterRoutes(mux)

	return &harness{
		t:        t,
		backend:  backend,
		store:    s,
		queries:  queries,
		verifier: verifier,
		console:  c,
		mux:      mux,
	}
}

// token mints a backend token for role.
func (h *harness) token(role auth.Role) string {
	h.t.Helper()
	tok, err := h.verifier.Generate(auth.Claims{
		Subject:    "user-" + string(role),
		Role:       role,
		GivenName:  "Test",
		FamilyName: "User",
	}, time.Hour)
	require.NoError(h.t, err)
	return tok
}

// signIn stores a session for role and returns the cookies a browser would send.
func (h *harness) signIn(role auth.Role) []*http.Cookie {
	h.t.Helper()
	sess := &store.Session{
		ID:        "sess-" + string(role),
		Subject:   "user-" + string(role),
		Role:      string(role),
		Name:      "Test " + string(role),
		Token:     h.token(role),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(h.t, h.store.CreateSession(context.Background(), sess))
	return []*http.Cookie{
		{Name: SessionCookieName, Value: sess.ID},
		{Name: CSRFCookieName, Value: testCSRF},
	}
}

type request struct {
	method  string
	path    string
	form    url.Values
	cookies []*http.Cookie
	htmx    bool
	noCSRF  bool
}

func (h *harness) do(req request) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	if req.htmx {
		r.Header.Set("HX-Request", "true")
	}
	if req.method != http.MethodGet && !req.noCSRF {
		r.Header.Set("X-CSRF-Token", testCSRF)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, r)
	return rec
}

func (h *harness) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.do(request{method: http.MethodGet, path: path, cookies: cookies, htmx: true})
}

// triggers decodes the HX-Trigger header.
func triggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	require.NotEmpty(t, raw, "HX-Trigger header missing")
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func triggeredToast(t *testing.T, rec *httptest.ResponseRecorder) toast {
	t.Helper()
	var tt toast
	require.NoError(t, json.Unmarshal(triggers(t, rec)["toast"], &tt))
	return tt
}

func triggeredInvalidation(t *testing.T, rec *httptest.ResponseRecorder) invalidated {
	t.Helper()
	var inv invalidated
	require.NoError(t, json.Unmarshal(triggers(t, rec)["invalidated"], &inv))
	return inv
}

func activity(t *testing.T, s store.Store, action store.ActivityAction) []store.ActivityEntry {
	t.Helper()
	entries, err := s.ListActivity(context.Background(), store.ActivityFilter{Action: &action, Limit: 50})
	require.NoError(t, err)
	return entries
}
