package authsdk

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/cachex"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// RemoteIntrospector resolves bearer tokens against the authorization
// server's introspection endpoint. Any failure is returned as an error, which
// the bearer guard turns into a denial.
type RemoteIntrospector struct {
	client *AuthorizedClient
}

var _ httpx.Introspector = (*RemoteIntrospector)(nil)

func NewRemoteIntrospector(client *AuthorizedClient) *RemoteIntrospector {
	return &RemoteIntrospector{client: client}
}

func (r *RemoteIntrospector) Introspect(ctx context.Context, token string) (httpx.Introspection, error) {
	resp, err := r.client.Introspect(ctx, token)
	if err != nil {
		return httpx.Introspection{}, err
	}
	return resp.ToIntrospection(), nil
}

// ToIntrospection converts the wire response into what the bearer guard
// checks.
func (r *IntrospectionResponse) ToIntrospection() httpx.Introspection {
	if !r.Active {
		return httpx.Introspection{}
	}

	in := httpx.Introspection{
		Active:   true,
		ClientID: r.ClientID,
		Scopes:   strings.Fields(r.Scope),
		Expired:  r.IsExpired,
		Revoked:  r.IsRevoked,
	}
	if r.CreatedAt > 0 {
		in.ExpiresAt = time.Unix(r.CreatedAt, 0).Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return in
}

// CachedIntrospector remembers active introspection results for TTL, but
// never beyond the token's own expiry. Inactive results and errors are not
// cached. Cache failures fall through to Next.
type CachedIntrospector struct {
	Next  httpx.Introspector
	Cache cachex.Cache
	TTL   time.Duration
	Now   func() time.Time
}

var _ httpx.Introspector = (*CachedIntrospector)(nil)

func (c *CachedIntrospector) Introspect(ctx context.Context, token string) (httpx.Introspection, error) {
	log := slogx.FromContext(ctx)
	key := "introspect:" + cryptox.FingerprintToken(token)
	now := c.now()

	if raw, ok, err := c.Cache.Get(ctx, key); err != nil {
		log.Warn("introspection cache read failed", "error", err)
	} else if ok {
		var in httpx.Introspection
		if err := json.Unmarshal(raw, &in); err == nil && now.Before(in.ExpiresAt) {
			return in, nil
		}
	}

	in, err := c.Next.Introspect(ctx, token)
	if err != nil || !in.Active || in.Expired || in.Revoked || in.ExpiresAt.IsZero() {
		return in, err
	}

	ttl := min(c.TTL, in.ExpiresAt.Sub(now))
	if ttl <= 0 {
		return in, nil
	}

	raw, err := json.Marshal(in)
	if err == nil {
		err = c.Cache.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		log.Warn("introspection cache write failed", "error", err)
	}
	return in, nil
}

func (c *CachedIntrospector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
