package authsdk

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_client")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the OAuth2 token endpoint response per RFC 6749.
type TokenResponse struct {
	// AccessToken is the opaque bearer token
	AccessToken string `json:"access_token"`

	// RefreshToken is only present when the server issues refresh tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// IntrospectionResponse represents the RFC 7662 introspection response.
// An inactive token is reported as {"active": false} and nothing else.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	ClientID  string `json:"client_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"` // seconds
	CreatedAt int64  `json:"created_at,omitempty"` // unix seconds
	IsExpired bool   `json:"is_expired"`
	IsRevoked bool   `json:"is_revoked"`
}

// ============================================================================
// Client Registration Types
// ============================================================================

// RegisterClientRequest registers a client_credentials client.
type RegisterClientRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// RegisterClientResponse confirms a registration.
type RegisterClientResponse struct {
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// ResourceResponse is the body of the protected demo resource.
type ResourceResponse struct {
	Message  string `json:"message"`
	ClientID string `json:"client_id,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
