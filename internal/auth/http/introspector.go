package http

import (
	"context"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
)

// localIntrospector lets the bearer guard consult the token store in
// process.
type localIntrospector struct {
	svc *service.IntrospectionService
}

func (l *localIntrospector) Introspect(ctx context.Context, token string) (httpx.Introspection, error) {
	in, err := l.svc.Introspect(ctx, token)
	if err != nil || !in.Active {
		return httpx.Introspection{}, err
	}

	t := in.ExpiresAt()
	return httpx.Introspection{
		Active:    true,
		ClientID:  in.ClientID,
		Scopes:    httpx.ParseSpaceDelimitedFields(in.Scope),
		ExpiresAt: t,
		Expired:   in.IsExpired,
		Revoked:   in.IsRevoked,
	}, nil
}
