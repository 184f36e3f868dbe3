package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/labsight/internal/application/session"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", "anon-key", srv.Client())
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "k", nil)
	require.Error(t, err)
	_, err = NewClient("http://x", "", nil)
	require.Error(t, err)
}

func TestCurrentUser_SendsCredentialHeaders(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/user", r.URL.Path)
		require.Equal(t, "anon-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","email":"pat@example.com","aud":"authenticated"}`))
	})

	id, err := c.CurrentUser(session.WithCredential(context.Background(), "tok-1"))
	require.NoError(t, err)
	require.Equal(t, "user-1", id.ID)
	require.Equal(t, "pat@example.com", id.Email)
}

func TestCurrentUser_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"rejected", http.StatusUnauthorized, `{"msg":"invalid JWT"}`, true},
		{"server error", http.StatusInternalServerError, `oops`, true},
		{"bad json", http.StatusOK, `{`, true},
		{"unknown user", http.StatusNotFound, ``, false},
		{"no id", http.StatusOK, `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			id, err := c.CurrentUser(session.WithCredential(context.Background(), "tok"))
			require.Nil(t, id)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCurrentUser_NoCredential(t *testing.T) {
	called := false
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)
	require.False(t, called)
}

func TestCheck(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.Check(context.Background()))

	down := newServer(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	require.Error(t, down.Check(context.Background()))
}
