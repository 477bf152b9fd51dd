package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// ClientService is the credential store: it registers clients and checks
// presented credentials.
type ClientService struct {
	Store  store.Store
	Hasher *cryptox.SecretHasher
	Now    func() time.Time
}

// RegisterClient stores a new client with a hashed secret. Registering a
// taken client id fails with ErrAlreadyExists and leaves the existing record
// untouched.
func (s *ClientService) RegisterClient(ctx context.Context, clientID, secret string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	clientID = strings.TrimSpace(clientID)
	if clientID == "" || secret == "" {
		return domain.Client{}, ErrMalformedRequest
	}

	hash, err := s.Hasher.Hash(secret)
	if err != nil {
		return domain.Client{}, fmt.Errorf("hash client secret: %w", err)
	}

	c := domain.Client{
		ClientID:                clientID,
		SecretHash:              hash,
		GrantType:               domain.GrantTypeClientCredentials,
		TokenEndpointAuthMethod: domain.AuthMethodClientSecretBasic,
		CreatedAt:               s.now().UTC().Truncate(time.Second),
	}

	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Client{}, ErrAlreadyExists
		}
		return domain.Client{}, fmt.Errorf("create client: %w", err)
	}

	l.Info("client registered", "client_id", clientID)
	return c, nil
}

// Authenticate returns the client when secret matches. Unknown ids and wrong
// secrets both yield ErrInvalidClient after the same amount of hashing work.
func (s *ClientService) Authenticate(ctx context.Context, clientID, secret string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	c, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Hasher.VerifyDummy(secret)
			l.Info("client authentication failed", "client_id", clientID, "reason", "unknown_client")
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, fmt.Errorf("load client: %w", err)
	}

	if err := s.Hasher.Verify(secret, c.SecretHash); err != nil {
		l.Info("client authentication failed", "client_id", clientID, "reason", "secret_mismatch")
		return domain.Client{}, ErrInvalidClient
	}
	return c, nil
}

func (s *ClientService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
