// ABOUTME: Tests for the API client's envelope decoding and error mapping
// ABOUTME: Uses small httptest servers to shape raw backend responses

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, contentType, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second)
}

func TestDecode_Envelope(t *testing.T) {
	c := serve(t, http.StatusOK, "application/json",
		`{"success":true,"message":"OK","data":{"id":"c1","name":"Blood Drive","limitDonation":50,"status":"active"}}`)

	campaign, err := c.Campaigns.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Blood Drive", campaign.Name)
	assert.Equal(t, 50, campaign.LimitDonation)
	assert.Equal(t, CampaignActive, campaign.Status)
}

func TestDecode_BareBody(t *testing.T) {
	// /staffs/me answers without the envelope on some deployments
	c := serve(t, http.StatusOK, "application/json", `{"firstName":"Linh","lastName":"Tran","role":"staff"}`)

	profile, err := c.Staff.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Linh Tran", profile.FullName())
	assert.Equal(t, "staff", profile.Role)
}

func TestDecode_UnsuccessfulEnvelope(t *testing.T) {
	c := serve(t, http.StatusOK, "application/json", `{"success":false,"message":"Campaign is closed"}`)

	_, err := c.Campaigns.Get(context.Background(), "c1")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Campaign is closed", apiErr.Message)
}

func TestDecode_EmptyBody(t *testing.T) {
	c := serve(t, http.StatusNoContent, "", "")

	err := c.Campaigns.Delete(context.Background(), "c1")
	assert.NoError(t, err)
}

func TestErrorResponse_JSONMessage(t *testing.T) {
	c := serve(t, http.StatusNotFound, "application/json; charset=utf-8",
		`{"success":false,"message":"Campaign not found"}`)

	_, err := c.Campaigns.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Campaign not found", Message(err))
}

func TestErrorResponse_MessageList(t *testing.T) {
	c := serve(t, http.StatusBadRequest, "application/json",
		`{"statusCode":400,"message":["name should not be empty","limitDonation must be a number"]}`)

	_, err := c.Campaigns.Create(context.Background(), CampaignInput{})
	require.Error(t, err)
	assert.Equal(t, "name should not be empty; limitDonation must be a number", Message(err))
}

func TestErrorResponse_PlainText(t *testing.T) {
	c := serve(t, http.StatusBadGateway, "text/plain", "upstream down")

	_, err := c.Donations.Get(context.Background(), "d1")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestErrorResponse_Unauthorized(t *testing.T) {
	c := serve(t, http.StatusUnauthorized, "", "")

	_, err := c.Staff.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Unauthorized", Message(err))
}

func TestBearerTokenForwarded(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"firstName":"A"}}`))
	}))
	defer srv.Close()

	type tokenKey struct{}
	c := New(srv.URL, time.Second, WithTokenSource(func(ctx context.Context) string {
		s, _ := ctx.Value(tokenKey{}).(string)
		return s
	}))

	ctx := context.WithValue(context.Background(), tokenKey{}, "tok-123")
	_, err := c.Staff.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	_, err = c.Staff.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Campaigns.List(ctx, ListParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestListParams_Normalize(t *testing.T) {
	tests := []struct {
		in   ListParams
		want ListParams
	}{
		{ListParams{}, ListParams{Page: 1, Limit: 10}},
		{ListParams{Page: 3, Limit: 25}, ListParams{Page: 3, Limit: 25}},
		{ListParams{Page: -2, Limit: 1000}, ListParams{Page: 1, Limit: MaxLimit}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}

func TestDonationListParams_Values(t *testing.T) {
	v := DonationListParams{ListParams: ListParams{Page: 2, Limit: 5}, Status: DonationPending}.values()
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "5", v.Get("limit"))
	assert.Equal(t, "pending", v.Get("status"))

	v = DonationListParams{}.values()
	assert.False(t, v.Has("status"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Not Started", Label(string(CampaignNotStarted)))
	assert.Equal(t, "Active", Label("active"))
	assert.Equal(t, "", Label(""))
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2025-01-01", DateOnly("2025-01-01T00:00:00.000Z"))
	assert.Equal(t, "2025-01-01", DateOnly("2025-01-01"))
	assert.Equal(t, "", DateOnly(""))
}

func TestActionKind_Display(t *testing.T) {
	assert.Equal(t, "Status Update", ActionStatusUpdate.Display())
	assert.Equal(t, "Volume Change", ActionVolumeChange.Display())
	assert.Equal(t, "Volume Change", ActionKind("anything_else").Display())
}

func TestDonationStatus_Known(t *testing.T) {
	assert.True(t, DonationRejected.Known())
	assert.False(t, DonationStatus("failed").Known())
}
