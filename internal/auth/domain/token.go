package domain

import (
	"slices"
	"strings"
	"time"
)

const TokenTypeBearer = "Bearer"

// Token is an issued access token. The raw AccessToken and RefreshToken are
// only populated on the value returned at issuance; stored records carry
// fingerprints.
type Token struct {
	ID               string
	ClientID         string
	AccessToken      string
	AccessTokenHash  string
	RefreshToken     string
	RefreshTokenHash string
	TokenType        string
	Scope            string // space-delimited
	ExpiresIn        time.Duration
	CreatedAt        time.Time
	RevokedAt        *time.Time
}

// ExpiresAt is CreatedAt plus ExpiresIn.
func (t Token) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.ExpiresIn)
}

// IsExpired reports whether now is past the token's lifetime.
func (t Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

// IsRevoked reports whether the token has been revoked. Nothing revokes
// tokens yet, so this is false for every token the issuer writes.
func (t Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Active reports whether the token may be used at now.
func (t Token) Active(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsRevoked()
}

// Scopes returns the individual scope values.
func (t Token) Scopes() []string {
	return strings.Fields(t.Scope)
}

// HasScope reports whether scope was granted.
func (t Token) HasScope(scope string) bool {
	return slices.Contains(t.Scopes(), scope)
}
