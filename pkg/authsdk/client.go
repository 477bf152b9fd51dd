package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to a ccauth authorization server. It holds no
// credentials; bearer tokens are passed per call.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the server at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
