package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/aussiebroadwan/ccauth/pkg/idx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

const (
	DefaultScope    = "profile"
	DefaultTokenTTL = time.Hour

	maxIssueAttempts = 3
)

// TokenIssuer mints opaque bearer tokens and commits them to the token store.
type TokenIssuer struct {
	Store        store.Store
	DefaultScope string
	TTL          time.Duration
	IssueRefresh bool
	Metrics      *Metrics

	Now      func() time.Time
	Generate func() (string, error) // defaults to 48 bytes from crypto/rand
}

// Issue mints a token for client. A blank requestedScope falls back to the
// default scope. The returned token carries the raw access and refresh
// values, which are never stored.
func (s *TokenIssuer) Issue(ctx context.Context, client domain.Client, requestedScope string) (domain.Token, error) {
	l := slogx.FromContext(ctx)

	if client.ClientID == "" {
		return domain.Token{}, ErrMalformedRequest
	}

	scope := normalizeScope(requestedScope)
	if scope == "" {
		scope = normalizeScope(s.DefaultScope)
	}
	if scope == "" {
		scope = DefaultScope
	}

	var lastErr error
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		t, err := s.mint(client.ClientID, scope)
		if err != nil {
			lastErr = err
			break
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.Clients().GetClientByID(ctx, t.ClientID); err != nil {
				return err
			}
			return tx.Tokens().CreateToken(ctx, t)
		})
		if err == nil {
			s.Metrics.tokenIssued("success")
			l.Info("token issued", "client_id", t.ClientID, "token_id", t.ID, "scope", t.Scope)
			return t, nil
		}

		lastErr = err
		if !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
		l.Warn("token fingerprint collision, regenerating", "attempt", attempt)
	}

	s.Metrics.tokenIssued("failure")
	l.Error("token issuance failed", "client_id", client.ClientID, "error", lastErr)
	return domain.Token{}, fmt.Errorf("%w: %w", ErrIssuanceFailed, lastErr)
}

func (s *TokenIssuer) mint(clientID, scope string) (domain.Token, error) {
	now := s.now().UTC().Truncate(time.Second)

	access, err := s.generate()
	if err != nil {
		return domain.Token{}, err
	}

	t := domain.Token{
		ID:              idx.NewAt(now).String(),
		ClientID:        clientID,
		AccessToken:     access,
		AccessTokenHash: cryptox.FingerprintToken(access),
		TokenType:       domain.TokenTypeBearer,
		Scope:           scope,
		ExpiresIn:       s.ttl(),
		CreatedAt:       now,
	}

	if s.IssueRefresh {
		refresh, err := s.generate()
		if err != nil {
			return domain.Token{}, err
		}
		t.RefreshToken = refresh
		t.RefreshTokenHash = cryptox.FingerprintToken(refresh)
	}
	return t, nil
}

func (s *TokenIssuer) generate() (string, error) {
	if s.Generate != nil {
		return s.Generate()
	}
	return cryptox.GenerateToken(cryptox.TokenSize384)
}

func (s *TokenIssuer) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL.Truncate(time.Second)
	}
	return DefaultTokenTTL
}

func (s *TokenIssuer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// normalizeScope trims the scope and drops repeated values, keeping the
// first occurrence of each.
func normalizeScope(scope string) string {
	var out []string
	for _, s := range strings.Fields(scope) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}
