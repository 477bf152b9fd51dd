package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func registered(t *testing.T, f *fixture, id string) domain.Client {
	t.Helper()

	c, err := f.clients.RegisterClient(context.Background(), id, "secret-"+id)
	require.NoError(t, err)
	return c
}

func TestIssue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	c := registered(t, f, "svc")

	tok, err := f.issuer.Issue(ctx, c, "")
	require.NoError(t, err)

	require.Equal(t, "svc", tok.ClientID)
	require.Equal(t, domain.TokenTypeBearer, tok.TokenType)
	require.Equal(t, "profile", tok.Scope)
	require.Equal(t, time.Hour, tok.ExpiresIn)
	require.Equal(t, f.clock.Now(), tok.CreatedAt)
	require.Len(t, tok.AccessToken, 64)
	require.NotEmpty(t, tok.RefreshToken)
	require.NotEqual(t, tok.AccessToken, tok.RefreshToken)

	stored, err := f.store.Tokens().GetTokenByAccessHash(ctx, cryptox.FingerprintToken(tok.AccessToken))
	require.NoError(t, err)
	require.Equal(t, tok.ID, stored.ID)
	require.Empty(t, stored.AccessToken)
	require.Equal(t, cryptox.FingerprintToken(tok.RefreshToken), stored.RefreshTokenHash)
}

func TestIssue_Scope(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := registered(t, f, "svc")

	tests := []struct {
		requested string
		want      string
	}{
		{"", "profile"},
		{"   ", "profile"},
		{"read", "read"},
		{" read  write ", "read write"},
		{"read write read", "read write"},
	}
	for _, tt := range tests {
		tok, err := f.issuer.Issue(context.Background(), c, tt.requested)
		require.NoError(t, err)
		require.Equal(t, tt.want, tok.Scope, "requested %q", tt.requested)
	}
}

func TestIssue_WithoutRefreshToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.issuer.IssueRefresh = false

	tok, err := f.issuer.Issue(context.Background(), registered(t, f, "svc"), "")
	require.NoError(t, err)
	require.Empty(t, tok.RefreshToken)
	require.Empty(t, tok.RefreshTokenHash)
}

func TestIssue_TokensAreDistinct(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.issuer.IssueRefresh = false
	c := registered(t, f, "svc")

	const n = 1000
	seen := make(map[string]struct{}, n)
	for range n {
		tok, err := f.issuer.Issue(context.Background(), c, "")
		require.NoError(t, err)
		seen[tok.AccessToken] = struct{}{}
	}
	require.Len(t, seen, n)
}

func TestIssue_RetriesOnCollision(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.issuer.IssueRefresh = false
	c := registered(t, f, "svc")

	values := []string{"dup", "dup", "fresh"}
	f.issuer.Generate = func() (string, error) {
		v := values[0]
		values = values[1:]
		return v, nil
	}

	first, err := f.issuer.Issue(context.Background(), c, "")
	require.NoError(t, err)
	require.Equal(t, "dup", first.AccessToken)

	second, err := f.issuer.Issue(context.Background(), c, "")
	require.NoError(t, err)
	require.Equal(t, "fresh", second.AccessToken)
}

func TestIssue_GivesUpAfterRepeatedCollisions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.issuer.IssueRefresh = false
	c := registered(t, f, "svc")
	f.issuer.Generate = func() (string, error) { return "always", nil }

	_, err := f.issuer.Issue(context.Background(), c, "")
	require.NoError(t, err)

	_, err = f.issuer.Issue(context.Background(), c, "")
	require.ErrorIs(t, err, ErrIssuanceFailed)
}

func TestIssue_Failures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	t.Run("empty client id", func(t *testing.T) {
		_, err := f.issuer.Issue(context.Background(), domain.Client{}, "")
		require.ErrorIs(t, err, ErrMalformedRequest)
	})

	t.Run("unregistered client", func(t *testing.T) {
		_, err := f.issuer.Issue(context.Background(), domain.Client{ClientID: "ghost"}, "")
		require.ErrorIs(t, err, ErrIssuanceFailed)
	})

	t.Run("generator failure", func(t *testing.T) {
		boom := errors.New("entropy exhausted")
		issuer := *f.issuer
		issuer.Generate = func() (string, error) { return "", boom }

		_, err := issuer.Issue(context.Background(), registered(t, f, "svc"), "")
		require.ErrorIs(t, err, ErrIssuanceFailed)
		require.ErrorIs(t, err, boom)
	})
}

func TestIssue_ExpiryFollowsClock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.issuer.TTL = 2 * time.Second

	tok, err := f.issuer.Issue(context.Background(), registered(t, f, "svc"), "")
	require.NoError(t, err)

	require.False(t, tok.IsExpired(f.clock.Now()))
	require.False(t, tok.IsExpired(f.clock.Now().Add(2*time.Second)))
	require.True(t, tok.IsExpired(f.clock.Now().Add(3*time.Second)))
}
