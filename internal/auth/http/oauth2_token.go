package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// TokenHandler serves POST /oauth/token
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	Grant               *service.ClientCredentialsGrant
	TrustForwardedProto bool
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues an opaque access token using the client_credentials grant (RFC 6749 §4.4).
//	@Description	Clients authenticate with HTTP Basic or with client_id and client_secret in the body.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(client_credentials)
//	@Param			client_id		formData	string					false	"Client identifier (when not using HTTP Basic)"
//	@Param			client_secret	formData	string					false	"Client secret (when not using HTTP Basic)"
//	@Param			scope			formData	string					false	"Space-delimited list of scopes, defaults to profile"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in, scope, refresh_token"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/oauth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	// 3. Resolve client credentials
	req := service.TokenRequest{
		GrantType: r.PostForm.Get("grant_type"),
		Scope:     r.PostForm.Get("scope"),
		Secure:    httpx.IsSecureTransport(r, h.TrustForwardedProto),
	}

	basicID, basicSecret, usedBasic := basicCredentials(r)
	if usedBasic {
		// RFC 6749 §2.3: a client must not use more than one method
		if r.PostForm.Get("client_secret") != "" {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		req.ClientID, req.ClientSecret = basicID, basicSecret
	} else {
		req.ClientID = r.PostForm.Get("client_id")
		req.ClientSecret = r.PostForm.Get("client_secret")
	}

	// 4. Run the grant
	res, err := h.Grant.Exchange(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsecureTransport):
			authsdk.ErrInsecureTransport.WriteError(w)
		case errors.Is(err, service.ErrUnsupportedGrantType):
			authsdk.ErrUnsupportedGrantType.WriteError(w)
		case errors.Is(err, service.ErrInvalidClient):
			if usedBasic {
				w.Header().Set("WWW-Authenticate", `Basic realm="ccauth"`)
				authsdk.ErrInvalidClient.WithStatus(http.StatusUnauthorized).WriteError(w)
				return
			}
			authsdk.ErrInvalidClient.WriteError(w)
		default:
			log.Error("client_credentials grant failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	tok := res.Token
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    int(tok.ExpiresIn.Seconds()),
		Scope:        tok.Scope,
	})
}

// basicCredentials returns HTTP Basic client credentials, which RFC 6749
// §2.3.1 form-encodes before base64.
func basicCredentials(r *http.Request) (id, secret string, ok bool) {
	rawID, rawSecret, ok := r.BasicAuth()
	if !ok {
		return "", "", false
	}

	id, err := url.QueryUnescape(rawID)
	if err != nil {
		id = rawID
	}
	secret, err = url.QueryUnescape(rawSecret)
	if err != nil {
		secret = rawSecret
	}
	return id, secret, true
}
