package auth_test

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestClientCredentialsFlow(t *testing.T) {
	baseURL := setupAuthContainer(t, relaxedRateLimits)
	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()
	bearer := adminToken(t, client)

	// Register c1 and obtain a token for it
	reg, err := client.RegisterClient(ctx, bearer, "c1", "s1")
	require.NoError(t, err)
	require.Equal(t, "c1", reg.ClientID)

	tok, err := client.ClientCredentialsGrant(ctx, "c1", "s1", nil)
	require.NoError(t, err)
	assertTokenResponse(t, tok)
	require.Equal(t, 3600, tok.ExpiresIn)
	require.Equal(t, "profile", tok.Scope)

	// No bearer, no resource
	_, err = client.GetResource(ctx, "", "/api/resource")
	assertUnauthorized(t, err, "resource without a token")

	res, err := client.GetResource(ctx, tok.AccessToken, "/api/resource")
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", res.Message)

	// Introspect the fresh token as its own client
	in, err := client.Introspect(ctx, tok.AccessToken, tok.AccessToken)
	require.NoError(t, err)
	require.True(t, in.Active)
	require.Equal(t, "c1", in.ClientID)
	require.Equal(t, int64(3600), in.ExpiresIn)

	// A random 48-byte token was never issued
	buf := make([]byte, 48)
	_, err = rand.Read(buf)
	require.NoError(t, err)
	in, err = client.Introspect(ctx, tok.AccessToken, base64.RawURLEncoding.EncodeToString(buf))
	require.NoError(t, err)
	require.False(t, in.Active)
	require.Empty(t, in.ClientID)
}

func TestDuplicateRegistration(t *testing.T) {
	baseURL := setupAuthContainer(t, relaxedRateLimits)
	client := authsdk.NewSDKClient(baseURL)
	bearer := adminToken(t, client)

	_, err := client.RegisterClient(t.Context(), bearer, "dup", "one")
	require.NoError(t, err)

	_, err = client.RegisterClient(t.Context(), bearer, "dup", "two")
	var oerr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, 400, oerr.StatusCode)

	// The original secret still works
	_, err = client.ClientCredentialsGrant(t.Context(), "dup", "one", nil)
	require.NoError(t, err)
	_, err = client.ClientCredentialsGrant(t.Context(), "dup", "two", nil)
	require.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	env := map[string]string{"AUTH_TOKEN_EXPIRES_IN": "1"}
	for k, v := range relaxedRateLimits {
		env[k] = v
	}
	baseURL := setupAuthContainer(t, env)
	client := authsdk.NewSDKClient(baseURL)

	tok, err := client.ClientCredentialsGrant(t.Context(), adminClientID, adminClientSecret, nil)
	require.NoError(t, err)
	require.Equal(t, 1, tok.ExpiresIn)

	// created_at has second precision, so wait out a full extra second
	time.Sleep(2500 * time.Millisecond)

	_, err = client.GetResource(t.Context(), tok.AccessToken, "/api/resource")
	assertUnauthorized(t, err, "resource with an expired token")
}

func TestTokenCacheRetriesAfterExpiry(t *testing.T) {
	env := map[string]string{"AUTH_TOKEN_EXPIRES_IN": "2"}
	for k, v := range relaxedRateLimits {
		env[k] = v
	}
	baseURL := setupAuthContainer(t, env)
	sdk := authsdk.NewSDKClient(baseURL)
	client := authsdk.NewAuthorizedClient(sdk, authsdk.NewTokenCache(sdk, adminClientID, adminClientSecret, nil))

	_, err := client.GetResource(t.Context(), "/api/resource")
	require.NoError(t, err)

	time.Sleep(3 * time.Second)

	res, err := client.GetResource(t.Context(), "/api/resource")
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", res.Message)
}
