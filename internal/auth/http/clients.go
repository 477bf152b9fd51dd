package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// ClientsHandler handles client registration.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleRegister handles POST /register-client
//
//	@Summary		Register OAuth2 Client
//	@Description	Registers a client_credentials client with the given id and secret.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.RegisterClientRequest	true	"Client registration request"
//	@Success		200		{object}	authsdk.RegisterClientResponse	"message, client_id"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/register-client [post].
func (h *ClientsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	c, err := h.ClientService.RegisterClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedRequest):
			authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"client_id and client_secret are required").WriteError(w)
		case errors.Is(err, service.ErrAlreadyExists):
			authsdk.ErrClientAlreadyExists.WriteError(w)
		default:
			log.Error("failed to register client", "error", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("client registered via API", "registered_client_id", c.ClientID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RegisterClientResponse{
		Message:  "Client registered successfully",
		ClientID: c.ClientID,
	})
}
