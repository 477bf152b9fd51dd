package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ClientCredentialsGrant requests an access token with the OAuth2
// client_credentials grant, authenticating in the form body.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/oauth/token", "",
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Introspect asks the server about token. The caller authenticates with
// bearer, which must carry the profile scope.
func (c *SDKClient) Introspect(ctx context.Context, bearer, token string) (*IntrospectionResponse, error) {
	data := url.Values{"token": {token}}

	resp, err := c.doRequest(ctx, http.MethodPost, "/oauth/introspect", bearer,
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var out IntrospectionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
