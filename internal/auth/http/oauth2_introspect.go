package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// IntrospectHandler serves POST /oauth/introspect following RFC 7662.
// The caller must present its own bearer token.
type IntrospectHandler struct {
	IntrospectionService *service.IntrospectionService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Introspection Endpoint
//	@Description	Reports whether a token is active (RFC 7662). Details are only returned for active tokens.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	formData	string							true	"The token to introspect"
//	@Success		200		{object}	authsdk.IntrospectionResponse	"Token introspection result"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Header			200		{string}	Cache-Control					"no-store"
//	@Header			200		{string}	Pragma							"no-cache"
//	@Router			/oauth/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 1. Ensure the right content-type
	if r.Header.Get("Content-Type") != "" && !httpx.HasContentType(r, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// 3. Look the token up
	in, err := h.IntrospectionService.Introspect(ctx, r.PostForm.Get("token"))
	if err != nil {
		if errors.Is(err, service.ErrMalformedRequest) {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		log.Error("introspection failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	if !in.Active {
		writeInactiveResponse(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.IntrospectionResponse{
		Active:    true,
		ClientID:  in.ClientID,
		TokenType: in.TokenType,
		Scope:     in.Scope,
		ExpiresIn: int64(in.ExpiresIn.Seconds()),
		CreatedAt: in.CreatedAt.Unix(),
		IsExpired: in.IsExpired,
		IsRevoked: in.IsRevoked,
	})
}

// writeInactiveResponse returns the minimal RFC 7662 response for inactive tokens.
func writeInactiveResponse(w http.ResponseWriter) {
	// Per RFC 7662: "If the token is not active, does not exist on this server,
	// or the protected resource is not allowed to introspect this particular token,
	// then the authorization server MUST return an introspection response with
	// the 'active' field set to 'false'"
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"active": false})
}
