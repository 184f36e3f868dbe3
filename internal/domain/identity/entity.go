package identity

import "context"

// Identity is the caller resolved from a bearer credential.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Provider resolves the credential attached to ctx to the caller's identity.
// A nil Identity with a nil error means the provider knows no such user.
type Provider interface {
	CurrentUser(ctx context.Context) (*Identity, error)
}
