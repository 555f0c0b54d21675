package webadmin

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bloodlink-console/internal/auth"
)

func TestHelpTopics(t *testing.T) {
	h := newHarness(t)
	cookies := h.signIn(auth.RoleStaff)

	rec := h.do(request{method: http.MethodGet, path: "/help", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Getting Started</h1>")

	// topics are listed in a fixed order
	order := []string{"topic=getting-started", "topic=campaigns", "topic=donations", "topic=blood-units", "topic=profile"}
	last := -1
	for _, topic := range order {
		idx := strings.Index(body, topic)
		require.Greater(t, idx, last, topic)
		last = idx
	}

	rec = h.do(request{method: http.MethodGet, path: "/help?topic=blood-units", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Blood Units</h1>")
}

func TestHelpUnknownTopic(t *testing.T) {
	h := newHarness(t)
	cookies := h.signIn(auth.RoleAdmin)

	for _, topic := range []string{"nope", "../../templates/base"} {
		rec := h.do(request{method: http.MethodGet, path: "/help?topic=" + topic, cookies: cookies})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "This help topic could not be found.")
	}
}
