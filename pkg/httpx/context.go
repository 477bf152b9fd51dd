package httpx

import "context"

type ctxKey string

const (
	CtxKeyClientID ctxKey = "client_id"
	CtxKeyScopes   ctxKey = "scopes"
)

// ClientIDFromContext returns the client id placed by RequireBearer.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyClientID).(string); ok {
		return v
	}
	return ""
}

// ScopesFromContext returns the token scopes placed by RequireBearer.
func ScopesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}

func contextWithToken(ctx context.Context, in Introspection) context.Context {
	ctx = context.WithValue(ctx, CtxKeyClientID, in.ClientID)
	ctx = context.WithValue(ctx, CtxKeyScopes, in.Scopes)
	return ctx
}
