package domain

import "time"

// Introspection is the RFC 7662 view of a token. Only Active is meaningful
// when Active is false.
type Introspection struct {
	Active    bool
	ClientID  string
	TokenType string
	Scope     string
	ExpiresIn time.Duration
	CreatedAt time.Time
	IsExpired bool
	IsRevoked bool
}

// IntrospectionOf builds the view of t at now. Inactive tokens yield the bare
// {active:false} result.
func IntrospectionOf(t Token, now time.Time) Introspection {
	if !t.Active(now) {
		return Introspection{}
	}
	return Introspection{
		Active:    true,
		ClientID:  t.ClientID,
		TokenType: t.TokenType,
		Scope:     t.Scope,
		ExpiresIn: t.ExpiresIn,
		CreatedAt: t.CreatedAt,
		IsExpired: t.IsExpired(now),
		IsRevoked: t.IsRevoked(),
	}
}

// ExpiresAt is CreatedAt plus ExpiresIn, or zero when inactive.
func (i Introspection) ExpiresAt() time.Time {
	if !i.Active {
		return time.Time{}
	}
	return i.CreatedAt.Add(i.ExpiresIn)
}
