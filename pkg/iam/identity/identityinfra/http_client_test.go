package identityinfra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userJSON = `{
	"id": "user_1",
	"first_name": "Ada",
	"last_name": "Lovelace",
	"image_url": "https://img.example.com/ada.png",
	"primary_email_address_id": "idn_1",
	"email_addresses": [
		{"id": "idn_1", "email_address": "ada@example.com", "verification": {"status": "verified"}}
	],
	"created_at": 1700000000000
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient("sk_test_secret", srv.URL, time.Second, nil)
}

func TestHTTPClient_GetUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/user_1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, userJSON)
	})

	p, err := client.GetUser(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, kernel.SubjectID("user_1"), p.ID)
	assert.Equal(t, "Ada Lovelace", p.DisplayName())
	email, ok := p.PrimaryEmail()
	require.True(t, ok)
	assert.True(t, email.Verified)
}

func TestHTTPClient_UpdateUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Grace", body["first_name"])
		assert.Equal(t, "Hopper", body["last_name"])
		_, _ = io.WriteString(w, `{"id":"user_1","first_name":"Grace","last_name":"Hopper"}`)
	})

	p, err := client.UpdateUser(context.Background(), "user_1", identity.NameUpdate{FirstName: "Grace", LastName: "Hopper"})

	require.NoError(t, err)
	assert.Equal(t, "Grace", p.FirstName)
}

func TestHTTPClient_RevokeSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sessions/sess_1/revoke", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"sess_1","user_id":"user_1","status":"revoked"}`)
	})

	s, err := client.RevokeSession(context.Background(), "sess_1")

	require.NoError(t, err)
	assert.Equal(t, "revoked", s.Status)
}

func TestHTTPClient_ListAndCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/count":
			_, _ = io.WriteString(w, `{"object":"total_count","total_count":42}`)
		case "/users":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "10", r.URL.Query().Get("offset"))
			_, _ = io.WriteString(w, "["+userJSON+"]")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	users, err := client.ListUsers(context.Background(), kernel.PaginationOptions{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	total, err := client.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   errx.ProviderKind
		http   int
	}{
		{http.StatusNotFound, errx.ProviderNotFound, http.StatusNotFound},
		{http.StatusUnauthorized, errx.ProviderUnauthorized, http.StatusUnauthorized},
		{http.StatusUnprocessableEntity, errx.ProviderBadResponse, http.StatusBadGateway},
		{http.StatusInternalServerError, errx.ProviderUnavailable, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"errors":[{"code":"resource_not_found","message":"not found"}]}`)
			})

			_, err := client.GetUser(context.Background(), "user_x")

			var pf *errx.ProviderFailure
			require.ErrorAs(t, err, &pf)
			assert.Equal(t, tt.kind, pf.Kind)
			assert.Equal(t, tt.status, pf.StatusCode)
			assert.Equal(t, tt.http, errx.Translate(err).HTTPStatus)
		})
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := NewHTTPClient("sk", srv.URL, 20*time.Millisecond, nil)
	_, err := client.GetUser(context.Background(), "user_1")

	var pf *errx.ProviderFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, errx.ProviderUnavailable, pf.Kind)
}
