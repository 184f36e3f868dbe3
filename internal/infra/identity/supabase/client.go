package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/labsight/internal/application/session"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
)

const defaultTimeout = 10 * time.Second

// Client resolves bearer tokens against a GoTrue-compatible auth API
// (GET {url}/auth/v1/user).
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(baseURL, anonKey string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity provider URL is required")
	}
	if anonKey == "" {
		return nil, errors.New("identity provider public key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, anonKey: anonKey, http: httpClient}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CurrentUser implements identity.Provider using the credential bound to ctx.
func (c *Client) CurrentUser(ctx context.Context) (*identity.Identity, error) {
	token, ok := session.CredentialFrom(ctx)
	if !ok {
		return nil, errors.New("no credential bound to context")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("credential rejected: status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var u userResponse
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return nil, nil
	}
	return &identity.Identity{ID: u.ID, Email: u.Email}, nil
}

// Check reports whether the auth API answers at all.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/health", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("identity provider unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
