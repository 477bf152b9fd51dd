package authsdk

import "context"

// AuthorizedClient makes bearer calls with tokens from a TokenCache. A 401
// refreshes the token and retries the call once.
type AuthorizedClient struct {
	SDK    *SDKClient
	Tokens *TokenCache
}

func NewAuthorizedClient(sdk *SDKClient, tokens *TokenCache) *AuthorizedClient {
	return &AuthorizedClient{SDK: sdk, Tokens: tokens}
}

func (a *AuthorizedClient) Introspect(ctx context.Context, token string) (*IntrospectionResponse, error) {
	return withToken(ctx, a.Tokens, func(ctx context.Context, bearer string) (*IntrospectionResponse, error) {
		return a.SDK.Introspect(ctx, bearer, token)
	})
}

func (a *AuthorizedClient) RegisterClient(ctx context.Context, clientID, clientSecret string) (*RegisterClientResponse, error) {
	return withToken(ctx, a.Tokens, func(ctx context.Context, bearer string) (*RegisterClientResponse, error) {
		return a.SDK.RegisterClient(ctx, bearer, clientID, clientSecret)
	})
}

func (a *AuthorizedClient) GetResource(ctx context.Context, target string) (*ResourceResponse, error) {
	return withToken(ctx, a.Tokens, func(ctx context.Context, bearer string) (*ResourceResponse, error) {
		return a.SDK.GetResource(ctx, bearer, target)
	})
}

func withToken[T any](ctx context.Context, tokens *TokenCache, op func(ctx context.Context, bearer string) (T, error)) (T, error) {
	return RetryOnUnauthorized(ctx,
		func(ctx context.Context) (T, error) {
			bearer, err := tokens.Token(ctx)
			if err != nil {
				var zero T
				return zero, err
			}
			return op(ctx, bearer)
		},
		func(ctx context.Context) error {
			_, err := tokens.Refresh(ctx)
			return err
		},
	)
}
