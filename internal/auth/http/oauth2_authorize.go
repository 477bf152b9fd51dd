package http

import (
	"net/http"

	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
)

// AuthorizeHandler godoc
//
//	@Summary		OAuth2 Authorization Endpoint
//	@Description	Always rejects: the client_credentials grant never involves a resource owner,
//	@Description	so no response type is served here.
//	@Tags			OAuth2
//	@Produce		json
//	@Failure		400	{object}	authsdk.ErrorResponse	"unsupported_response_type"
//	@Router			/oauth/authorize [get].
func AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authsdk.ErrUnsupportedResponseType.WriteError(w)
	}
}
