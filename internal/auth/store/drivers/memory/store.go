// Package memory is a map-backed store driver for development and tests.
// Transactions are serialised: a transaction works on a private copy of the
// state that replaces the shared state on commit.
package memory

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction has already been committed or rolled back")

type state struct {
	clients map[string]domain.Client
	tokens  map[string]domain.Token // keyed by access token hash
	refresh map[string]string       // refresh hash -> access hash
}

func newState() *state {
	return &state{
		clients: make(map[string]domain.Client),
		tokens:  make(map[string]domain.Token),
		refresh: make(map[string]string),
	}
}

func (s *state) clone() *state {
	return &state{
		clients: maps.Clone(s.clients),
		tokens:  maps.Clone(s.tokens),
		refresh: maps.Clone(s.refresh),
	}
}

// execFunc runs fn against the state, taking whatever locks the caller's
// mode requires.
type execFunc func(write bool, fn func(*state) error) error

type Store struct {
	writeMu sync.Mutex // held by every write and for the lifetime of a transaction
	mu      sync.RWMutex
	cur     *state
}

func NewStore() *Store {
	return &Store{cur: newState()}
}

func (s *Store) autocommit(write bool, fn func(*state) error) error {
	if write {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.cur)
}

func (s *Store) Clients() store.Clients { return clientsRepo{exec: s.autocommit} }
func (s *Store) Tokens() store.Tokens   { return tokensRepo{exec: s.autocommit} }

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	s.mu.RLock()
	snapshot := s.cur.clone()
	s.mu.RUnlock()

	return &txStore{parent: s, st: snapshot}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	parent *Store
	st     *state
	done   bool
}

func (t *txStore) exec(_ bool, fn func(*state) error) error {
	if t.done {
		return ErrTxDone
	}
	return fn(t.st)
}

func (t *txStore) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	t.parent.mu.Lock()
	t.parent.cur = t.st
	t.parent.mu.Unlock()
	t.parent.writeMu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.parent.writeMu.Unlock()
	return nil
}

func (t *txStore) Clients() store.Clients { return clientsRepo{exec: t.exec} }
func (t *txStore) Tokens() store.Tokens   { return tokensRepo{exec: t.exec} }

func (t *txStore) ApplyMigrations() error         { return nil }
func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return ErrTxDone
}

type clientsRepo struct {
	exec execFunc
}

func (r clientsRepo) GetClientByID(ctx context.Context, clientID string) (domain.Client, error) {
	var c domain.Client
	err := r.exec(false, func(s *state) error {
		found, ok := s.clients[clientID]
		if !ok {
			return store.ErrNotFound
		}
		c = found
		return nil
	})
	return c, err
}

func (r clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	return r.exec(true, func(s *state) error {
		if _, ok := s.clients[c.ClientID]; ok {
			return store.ErrAlreadyExists
		}
		c.CreatedAt = c.CreatedAt.Truncate(time.Second)
		s.clients[c.ClientID] = c
		return nil
	})
}

func (r clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	err := r.exec(false, func(s *state) error {
		for _, c := range s.clients {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out, err
}

func (r clientsRepo) CountClients(ctx context.Context) (int, error) {
	var n int
	err := r.exec(false, func(s *state) error {
		n = len(s.clients)
		return nil
	})
	return n, err
}

type tokensRepo struct {
	exec execFunc
}

func (r tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	return r.exec(true, func(s *state) error {
		if _, ok := s.clients[t.ClientID]; !ok {
			return store.ErrNotFound
		}
		if _, ok := s.tokens[t.AccessTokenHash]; ok {
			return store.ErrAlreadyExists
		}
		if t.RefreshTokenHash != "" {
			if _, ok := s.refresh[t.RefreshTokenHash]; ok {
				return store.ErrAlreadyExists
			}
			s.refresh[t.RefreshTokenHash] = t.AccessTokenHash
		}

		// Only fingerprints are persisted, matching the SQL drivers.
		t.AccessToken, t.RefreshToken = "", ""
		t.CreatedAt = t.CreatedAt.Truncate(time.Second)
		s.tokens[t.AccessTokenHash] = t
		return nil
	})
}

func (r tokensRepo) GetTokenByAccessHash(ctx context.Context, hash string) (domain.Token, error) {
	var t domain.Token
	err := r.exec(false, func(s *state) error {
		found, ok := s.tokens[hash]
		if !ok {
			return store.ErrNotFound
		}
		t = found
		return nil
	})
	return t, err
}

func (r tokensRepo) CountTokens(ctx context.Context, now time.Time) (store.TokenCounts, error) {
	var c store.TokenCounts
	err := r.exec(false, func(s *state) error {
		c.Total = len(s.tokens)
		for _, t := range s.tokens {
			if t.IsExpired(now) {
				c.Expired++
			}
		}
		return nil
	})
	return c, err
}
