package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
)

type fakeProvider struct {
	id  *identity.Identity
	err error

	calls    int
	gotToken string
}

func (f *fakeProvider) CurrentUser(ctx context.Context) (*identity.Identity, error) {
	f.calls++
	f.gotToken, _ = CredentialFrom(ctx)
	return f.id, f.err
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Reason
}

func TestNewGate_RequiresProvider(t *testing.T) {
	_, err := NewGate(nil, nil)
	require.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid token binds credential and identity", func(t *testing.T) {
		p := &fakeProvider{id: &identity.Identity{ID: "user-1", Email: "a@b.c"}}
		g, err := NewGate(p, nil)
		require.NoError(t, err)

		ctx, id, err := g.Authenticate(context.Background(), " tok-123 ")
		require.NoError(t, err)
		require.Equal(t, "user-1", id.ID)
		require.Equal(t, "tok-123", p.gotToken)

		token, ok := CredentialFrom(ctx)
		require.True(t, ok)
		require.Equal(t, "tok-123", token)

		stored, ok := IdentityFrom(ctx)
		require.True(t, ok)
		require.Equal(t, id, stored)
	})

	t.Run("empty token never reaches provider", func(t *testing.T) {
		p := &fakeProvider{}
		g, _ := NewGate(p, nil)

		_, _, err := g.Authenticate(context.Background(), "  ")
		require.True(t, apperr.Is(err, apperr.KindAuthentication))
		require.Equal(t, "no_credential", reasonOf(t, err))
		require.Zero(t, p.calls)
	})

	t.Run("provider error", func(t *testing.T) {
		g, _ := NewGate(&fakeProvider{err: errors.New("jwt expired")}, nil)

		_, _, err := g.Authenticate(context.Background(), "tok")
		require.True(t, apperr.Is(err, apperr.KindAuthentication))
		require.Equal(t, "invalid_credential", reasonOf(t, err))
	})

	t.Run("unknown user", func(t *testing.T) {
		g, _ := NewGate(&fakeProvider{}, nil)

		_, _, err := g.Authenticate(context.Background(), "tok")
		require.Equal(t, "invalid_credential", reasonOf(t, err))
	})
}

func TestAuthorizeOwner(t *testing.T) {
	id := &identity.Identity{ID: "user-1"}
	require.NoError(t, AuthorizeOwner(id, "user-1"))

	err := AuthorizeOwner(id, "user-2")
	require.True(t, apperr.Is(err, apperr.KindAuthorization))
	require.Equal(t, "identity_mismatch", reasonOf(t, err))

	require.True(t, apperr.Is(AuthorizeOwner(nil, "user-1"), apperr.KindAuthentication))
}

func TestCredentialFrom_Missing(t *testing.T) {
	_, ok := CredentialFrom(context.Background())
	require.False(t, ok)
	_, ok = IdentityFrom(context.Background())
	require.False(t, ok)
}
