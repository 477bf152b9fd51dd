package http

import (
	"net/http"

	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
)

// ResourceHandler godoc
//
//	@Summary		Protected Demo Resource
//	@Description	Returns a greeting to callers holding a profile-scoped token.
//	@Tags			Resource
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ResourceResponse	"message"
//	@Failure		401	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/api/resource [get].
func ResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.ResourceResponse{Message: "Hello, World!"})
	}
}
