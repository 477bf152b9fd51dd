package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// TokenCache holds the access token of a single client. It is safe for
// concurrent use; concurrent fetches share one token request.
type TokenCache struct {
	cfg    clientcredentials.Config
	client *SDKClient

	mu    sync.RWMutex
	token *oauth2.Token

	sf singleflight.Group
}

// NewTokenCache returns an empty cache for clientID. Tokens are requested
// from client's token endpoint with HTTP Basic client authentication.
func NewTokenCache(client *SDKClient, clientID, clientSecret string, scopes []string) *TokenCache {
	return &TokenCache{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     client.url("/oauth/token"),
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client: client,
	}
}

// Token returns the cached access token, fetching a new one when none is
// held or the held one is about to expire.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()

	if tok.Valid() {
		return tok.AccessToken, nil
	}
	return c.fetch(ctx)
}

// Refresh discards the cached token and fetches a new one.
func (c *TokenCache) Refresh(ctx context.Context) (string, error) {
	c.Invalidate()
	return c.fetch(ctx)
}

// Invalidate discards the cached token.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

func (c *TokenCache) fetch(ctx context.Context) (string, error) {
	v, err, _ := c.sf.Do("token", func() (any, error) {
		ctx := context.WithValue(ctx, oauth2.HTTPClient, c.client.HTTPClient)

		tok, err := c.cfg.Token(ctx)
		if err != nil {
			return nil, tokenError(err)
		}

		c.mu.Lock()
		c.token = tok
		c.mu.Unlock()
		return tok.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// tokenError converts token endpoint failures into *OAuth2Error so callers
// see the same error type as for every other endpoint.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return fmt.Errorf("fetch token: %w", err)
	}

	if re.ErrorCode == "" {
		return parseErrorResponse(re.Response, re.Body)
	}
	return &OAuth2Error{
		StatusCode:  re.Response.StatusCode,
		Code:        re.ErrorCode,
		Description: re.ErrorDescription,
	}
}
