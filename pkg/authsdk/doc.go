/*
Package authsdk is the client side of the ccauth authorization server.

# Overview

SDKClient wraps the HTTP endpoints. Calls that need a bearer token take it
as an argument, so the SDKClient itself holds no credentials:

	client := authsdk.NewSDKClient("https://auth.example.com")

	tok, err := client.ClientCredentialsGrant(ctx, "svc", "secret", nil)
	info, err := client.Introspect(ctx, tok.AccessToken, someToken)

# Token cache

A TokenCache owns the access token of one client. Token returns the cached
token or fetches a new one with the client_credentials grant; concurrent
fetches are collapsed into one request. Refresh forces a new token.

	tokens := authsdk.NewTokenCache(client, "svc", "secret", []string{"profile"})

# Retry after 401

RetryOnUnauthorized runs an operation, and when it fails with a 401 it
refreshes the token once and runs the operation once more. The second
result is returned as is.

AuthorizedClient combines an SDKClient with a TokenCache so every call gets
this behaviour:

	api := authsdk.NewAuthorizedClient(client, tokens)
	res, err := api.GetResource(ctx, "https://resource.example.com/api/resource")

# Resource servers

RemoteIntrospector implements httpx.Introspector against the introspection
endpoint, authenticating with its own TokenCache. CachedIntrospector keeps
active results in a cachex.Cache for at most the configured TTL and never
past the token's expiry.

# Errors

Error responses decode into *OAuth2Error. IsUnauthorized reports whether an
error is a 401 from the server.
*/
package authsdk
