package session

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
)

type credentialKey struct{}

// WithCredential attaches the caller's bearer token to ctx. Outgoing identity
// calls made with the returned context carry it.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFrom returns the token attached by WithCredential.
func CredentialFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey{}).(string)
	return token, ok && token != ""
}

type identityKey struct{}

// WithIdentity stores the authenticated caller on ctx.
func WithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by WithIdentity.
func IdentityFrom(ctx context.Context) (*identity.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*identity.Identity)
	return id, ok && id != nil
}

// Gate resolves bearer credentials to identities. It never writes.
type Gate struct {
	provider identity.Provider
	log      *zap.Logger
}

func NewGate(provider identity.Provider, log *zap.Logger) (*Gate, error) {
	if provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{provider: provider, log: log}, nil
}

// Authenticate binds token to the request context and asks the provider who
// it belongs to. The returned context carries both the token and the identity.
func (g *Gate) Authenticate(ctx context.Context, token string) (context.Context, *identity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx, nil, apperr.Authentication("no_credential", "Unauthorized", nil)
	}

	ctx = WithCredential(ctx, token)
	id, err := g.provider.CurrentUser(ctx)
	if err != nil {
		g.log.Info("credential rejected", zap.Error(err))
		return ctx, nil, apperr.Authentication("invalid_credential", "Unauthorized", err)
	}
	if id == nil || id.ID == "" {
		return ctx, nil, apperr.Authentication("invalid_credential", "Unauthorized", nil)
	}

	return WithIdentity(ctx, id), id, nil
}

// AuthorizeOwner fails unless the authenticated caller is the claimed owner.
func AuthorizeOwner(id *identity.Identity, claimedUserID string) error {
	if id == nil {
		return apperr.Authentication("no_credential", "Unauthorized", nil)
	}
	if id.ID != claimedUserID {
		return apperr.Authorization("identity_mismatch", "Forbidden")
	}
	return nil
}
