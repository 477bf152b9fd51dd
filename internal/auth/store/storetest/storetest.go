// Package storetest is the behaviour every store driver must share. Driver
// tests call Run with a constructor for a fresh, migrated store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Opener returns an empty, migrated store. It should register its own cleanup.
type Opener func(t *testing.T) store.Store

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func Run(t *testing.T, open Opener) {
	t.Run("clients", func(t *testing.T) { testClients(t, open(t)) })
	t.Run("duplicate client", func(t *testing.T) { testDuplicateClient(t, open(t)) })
	t.Run("concurrent registration", func(t *testing.T) { testConcurrentRegistration(t, open(t)) })
	t.Run("tokens", func(t *testing.T) { testTokens(t, open(t)) })
	t.Run("token constraints", func(t *testing.T) { testTokenConstraints(t, open(t)) })
	t.Run("count tokens", func(t *testing.T) { testCountTokens(t, open(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, open(t)) })
}

func Client(id string) domain.Client {
	return domain.Client{
		ClientID:                id,
		SecretHash:              "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		GrantType:               domain.GrantTypeClientCredentials,
		TokenEndpointAuthMethod: domain.AuthMethodClientSecretBasic,
		CreatedAt:               epoch,
	}
}

func Token(clientID, accessHash string, createdAt time.Time, ttl time.Duration) domain.Token {
	return domain.Token{
		ID:              idx.NewAt(createdAt).String(),
		ClientID:        clientID,
		AccessTokenHash: accessHash,
		TokenType:       domain.TokenTypeBearer,
		Scope:           "profile",
		ExpiresIn:       ttl,
		CreatedAt:       createdAt,
	}
}

func testClients(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Clients().GetClientByID(ctx, "c1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Clients().CreateClient(ctx, Client("c2")))
	require.NoError(t, s.Clients().CreateClient(ctx, Client("c1")))

	got, err := s.Clients().GetClientByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, Client("c1"), got)

	list, err := s.Clients().ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "c1", list[0].ClientID)
	require.Equal(t, "c2", list[1].ClientID)

	n, err := s.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func testDuplicateClient(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.Clients().CreateClient(ctx, Client("c1")))

	dup := Client("c1")
	dup.SecretHash = "$argon2id$v=19$m=1024,t=1,p=1$b3RoZXJzYWx0$b3RoZXI"
	require.ErrorIs(t, s.Clients().CreateClient(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Clients().GetClientByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, Client("c1").SecretHash, got.SecretHash, "duplicate must not overwrite")

	n, err := s.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func testConcurrentRegistration(t *testing.T, s store.Store) {
	ctx := context.Background()

	const writers = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		exists    atomic.Int32
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Clients().CreateClient(ctx, Client("racer"))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, store.ErrAlreadyExists):
				exists.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, succeeded.Load())
	require.EqualValues(t, writers-1, exists.Load())
}

func testTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Clients().CreateClient(ctx, Client("c1")))

	_, err := s.Tokens().GetTokenByAccessHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	live := Token("c1", "hash-live", epoch, time.Hour)
	live.RefreshTokenHash = "refresh-live"
	live.Scope = "profile read"
	require.NoError(t, s.Tokens().CreateToken(ctx, live))

	got, err := s.Tokens().GetTokenByAccessHash(ctx, "hash-live")
	require.NoError(t, err)
	require.Equal(t, live, got)

	// Expired tokens are still returned; liveness is the caller's decision.
	old := Token("c1", "hash-old", epoch.Add(-48*time.Hour), time.Second)
	require.NoError(t, s.Tokens().CreateToken(ctx, old))

	got, err = s.Tokens().GetTokenByAccessHash(ctx, "hash-old")
	require.NoError(t, err)
	require.True(t, got.IsExpired(epoch))
	require.False(t, got.IsRevoked())
}

func testTokenConstraints(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Clients().CreateClient(ctx, Client("c1")))

	first := Token("c1", "hash-a", epoch, time.Hour)
	first.RefreshTokenHash = "refresh-a"
	require.NoError(t, s.Tokens().CreateToken(ctx, first))

	t.Run("access hash collision", func(t *testing.T) {
		dup := Token("c1", "hash-a", epoch, time.Hour)
		require.ErrorIs(t, s.Tokens().CreateToken(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("refresh hash collision", func(t *testing.T) {
		dup := Token("c1", "hash-b", epoch, time.Hour)
		dup.RefreshTokenHash = "refresh-a"
		require.ErrorIs(t, s.Tokens().CreateToken(ctx, dup), store.ErrAlreadyExists)

		_, err := s.Tokens().GetTokenByAccessHash(ctx, "hash-b")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown client", func(t *testing.T) {
		orphan := Token("ghost", "hash-c", epoch, time.Hour)
		require.ErrorIs(t, s.Tokens().CreateToken(ctx, orphan), store.ErrNotFound)
	})
}

func testCountTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Clients().CreateClient(ctx, Client("c1")))

	for i := range 5 {
		ttl := time.Hour
		if i < 2 {
			ttl = time.Minute
		}
		require.NoError(t, s.Tokens().CreateToken(ctx, Token("c1", fmt.Sprintf("h%d", i), epoch, ttl)))
	}

	counts, err := s.Tokens().CountTokens(ctx, epoch.Add(10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, store.TokenCounts{Total: 5, Expired: 2}, counts)

	counts, err = s.Tokens().CountTokens(ctx, epoch)
	require.NoError(t, err)
	require.Equal(t, store.TokenCounts{Total: 5, Expired: 0}, counts)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Clients().CreateClient(ctx, Client("rolled-back")))
			require.NoError(t, tx.Tokens().CreateToken(ctx, Token("rolled-back", "tx-hash", epoch, time.Hour)))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Clients().GetClientByID(ctx, "rolled-back")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Tokens().GetTokenByAccessHash(ctx, "tx-hash")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Clients().CreateClient(ctx, Client("committed")); err != nil {
				return err
			}
			// Reads inside the transaction see its own writes.
			if _, err := tx.Clients().GetClientByID(ctx, "committed"); err != nil {
				return err
			}
			return tx.Tokens().CreateToken(ctx, Token("committed", "tx-commit", epoch, time.Hour))
		})
		require.NoError(t, err)

		_, err = s.Tokens().GetTokenByAccessHash(ctx, "tx-commit")
		require.NoError(t, err)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
