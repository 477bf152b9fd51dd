package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RegisterClient registers a new client_credentials client. The caller
// authenticates with bearer.
func (c *SDKClient) RegisterClient(ctx context.Context, bearer, clientID, clientSecret string) (*RegisterClientResponse, error) {
	body, err := json.Marshal(RegisterClientRequest{ClientID: clientID, ClientSecret: clientSecret})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/register-client", bearer,
		bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return nil, err
	}

	var out RegisterClientResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetResource fetches a protected resource. target is a path on the
// authorization server or an absolute URL of another resource server.
func (c *SDKClient) GetResource(ctx context.Context, bearer, target string) (*ResourceResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, target, bearer, nil, nil)
	if err != nil {
		return nil, err
	}

	var out ResourceResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
