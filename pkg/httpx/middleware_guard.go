package httpx

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// Introspection is what the bearer guard needs to know about a token.
type Introspection struct {
	Active    bool
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
	Expired   bool
	Revoked   bool
}

// HasScope reports whether scope was granted to the token.
func (in Introspection) HasScope(scope string) bool {
	return slices.Contains(in.Scopes, scope)
}

// Introspector resolves a bearer token, either in process or against a
// remote authorization server.
type Introspector interface {
	Introspect(ctx context.Context, token string) (Introspection, error)
}

// IntrospectorFunc adapts a function to Introspector.
type IntrospectorFunc func(ctx context.Context, token string) (Introspection, error)

func (f IntrospectorFunc) Introspect(ctx context.Context, token string) (Introspection, error) {
	return f(ctx, token)
}

// BearerToken extracts the token of an RFC 6750 Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireBearer admits requests carrying an active token that was granted
// scope. Every denial, including introspection errors, is the same 401 so
// callers cannot tell an unknown token from an expired one.
func RequireBearer(in Introspector, scope string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w)
				return
			}

			result, err := in.Introspect(ctx, raw)
			if err != nil {
				log.Warn("bearer introspection failed", "error", err)
				writeBearerError(w)
				return
			}

			if reason := denyReason(result, scope, time.Now()); reason != "" {
				log.Debug("bearer token denied", "reason", reason, "client_id", result.ClientID)
				writeBearerError(w)
				return
			}

			ctx = contextWithToken(ctx, result)
			ctx = slogx.With(ctx, "client_id", result.ClientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func denyReason(in Introspection, scope string, now time.Time) string {
	switch {
	case !in.Active:
		return "inactive"
	case in.Expired, !in.ExpiresAt.IsZero() && now.After(in.ExpiresAt):
		return "expired"
	case in.Revoked:
		return "revoked"
	case scope != "" && !in.HasScope(scope):
		return "insufficient_scope"
	}
	return ""
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="invalid_token", error_description="the access token is missing, invalid or expired"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": "the access token is missing, invalid or expired",
	})
}
