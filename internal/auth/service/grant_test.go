package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientCredentialsGrant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered(t, f, "svc")

	valid := TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     "svc",
		ClientSecret: "secret-svc",
		Secure:       true,
	}

	t.Run("issues a token", func(t *testing.T) {
		res, err := f.grant.Exchange(context.Background(), valid)
		require.NoError(t, err)
		require.Equal(t, GrantTokenIssued, res.State)
		require.Equal(t, []GrantState{GrantReceived, GrantClientAuthenticated, GrantTokenIssued}, res.Trail)
		require.Equal(t, "svc", res.Token.ClientID)
		require.NotEmpty(t, res.Token.AccessToken)
	})

	tests := []struct {
		name   string
		mutate func(r *TokenRequest)
		want   error
	}{
		{"insecure transport", func(r *TokenRequest) { r.Secure = false }, ErrInsecureTransport},
		{"unsupported grant", func(r *TokenRequest) { r.GrantType = "password" }, ErrUnsupportedGrantType},
		{"missing grant", func(r *TokenRequest) { r.GrantType = "" }, ErrUnsupportedGrantType},
		{"wrong secret", func(r *TokenRequest) { r.ClientSecret = "nope" }, ErrInvalidClient},
		{"unknown client", func(r *TokenRequest) { r.ClientID = "ghost" }, ErrInvalidClient},
		{"transport checked before grant type", func(r *TokenRequest) {
			r.Secure = false
			r.GrantType = "password"
		}, ErrInsecureTransport},
		{"grant type checked before credentials", func(r *TokenRequest) {
			r.GrantType = "password"
			r.ClientSecret = "nope"
		}, ErrUnsupportedGrantType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			res, err := f.grant.Exchange(context.Background(), req)
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, GrantRejected, res.State)
			require.Equal(t, []GrantState{GrantReceived, GrantRejected}, res.Trail)
			require.Empty(t, res.Token.AccessToken)
		})
	}
}

func TestClientCredentialsGrant_AllowInsecureTransport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered(t, f, "svc")
	f.grant.AllowInsecureTransport = true

	res, err := f.grant.Exchange(context.Background(), TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     "svc",
		ClientSecret: "secret-svc",
	})
	require.NoError(t, err)
	require.Equal(t, GrantTokenIssued, res.State)
}

func TestClientCredentialsGrant_IssuanceFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered(t, f, "svc")
	f.issuer.Generate = func() (string, error) { return "", errors.New("no entropy") }

	req := TokenRequest{GrantType: "client_credentials", ClientID: "svc", ClientSecret: "secret-svc", Secure: true}
	res, err := f.grant.Exchange(context.Background(), req)
	require.ErrorIs(t, err, ErrIssuanceFailed)
	require.Equal(t, []GrantState{GrantReceived, GrantClientAuthenticated, GrantRejected}, res.Trail)
}

func TestClientCredentialsGrant_IsNotAnAuthorizationGrant(t *testing.T) {
	var g any = &ClientCredentialsGrant{}
	_, ok := g.(AuthorizationGrant)
	require.False(t, ok)
	require.Equal(t, "client_credentials", g.(TokenGrant).GrantType())
}

func TestGrantStateString(t *testing.T) {
	require.Equal(t, "received", GrantReceived.String())
	require.Equal(t, "client_authenticated", GrantClientAuthenticated.String())
	require.Equal(t, "token_issued", GrantTokenIssued.String())
	require.Equal(t, "rejected", GrantRejected.String())
	require.Equal(t, "unknown", GrantState(42).String())
}
