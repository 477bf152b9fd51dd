package domain

import "time"

const (
	GrantTypeClientCredentials = "client_credentials"

	AuthMethodClientSecretBasic = "client_secret_basic"
	AuthMethodClientSecretPost  = "client_secret_post"
)

// Client is a registered OAuth2 client. Records are never mutated after
// creation.
type Client struct {
	ClientID                string
	SecretHash              string // Argon2id PHC string
	GrantType               string
	TokenEndpointAuthMethod string
	CreatedAt               time.Time
}
