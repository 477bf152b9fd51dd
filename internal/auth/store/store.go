package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers (sqlite, postgres,
// memory) implement it. Repositories hang off the Store so a Tx hands out
// repositories bound to the transaction and nested transactions cannot be
// started by accident.
type Store interface {
	Clients() Clients
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// GetClientByID returns ErrNotFound for unknown clients.
	GetClientByID(ctx context.Context, clientID string) (domain.Client, error)

	// CreateClient inserts c, returning ErrAlreadyExists without writing
	// anything when the client id is taken.
	CreateClient(ctx context.Context, c domain.Client) error

	// ListClients returns every client ordered by client id.
	ListClients(ctx context.Context) ([]domain.Client, error)

	CountClients(ctx context.Context) (int, error)
}

type Tokens interface {
	// CreateToken inserts t. It returns ErrAlreadyExists when the access or
	// refresh token fingerprint collides and ErrNotFound when t.ClientID does
	// not reference a client.
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByAccessHash returns the token whatever its expiry or
	// revocation state, or ErrNotFound.
	GetTokenByAccessHash(ctx context.Context, hash string) (domain.Token, error)

	// CountTokens reports how many tokens are stored and how many of those
	// are expired at now.
	CountTokens(ctx context.Context, now time.Time) (TokenCounts, error)
}

type TokenCounts struct {
	Total   int
	Expired int
}
