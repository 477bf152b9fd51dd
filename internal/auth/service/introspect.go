package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// IntrospectionService answers RFC 7662 queries about issued tokens. It
// never mutates the store, so repeated calls give the same answer for the
// same clock reading.
type IntrospectionService struct {
	Store   store.Store
	Metrics *Metrics
	Now     func() time.Time
}

// Lookup returns the stored record for a raw access token whatever its
// expiry or revocation state.
func (s *IntrospectionService) Lookup(ctx context.Context, token string) (domain.Token, bool, error) {
	t, err := s.Store.Tokens().GetTokenByAccessHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Token{}, false, nil
		}
		return domain.Token{}, false, fmt.Errorf("lookup token: %w", err)
	}
	return t, true, nil
}

// Introspect reports whether token is active. Details are only filled in for
// active tokens.
func (s *IntrospectionService) Introspect(ctx context.Context, token string) (domain.Introspection, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Introspection{}, ErrMalformedRequest
	}

	t, found, err := s.Lookup(ctx, token)
	if err != nil {
		return domain.Introspection{}, err
	}
	if !found {
		s.Metrics.introspected(false)
		return domain.Introspection{}, nil
	}

	now := s.now()
	result := domain.IntrospectionOf(t, now)
	if !result.Active {
		slogx.FromContext(ctx).Debug("inactive token introspected",
			"token_id", t.ID,
			"client_id", t.ClientID,
			"is_expired", t.IsExpired(now),
			"is_revoked", t.IsRevoked(),
		)
	}

	s.Metrics.introspected(result.Active)
	return result, nil
}

func (s *IntrospectionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
