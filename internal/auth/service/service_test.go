package service

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var testParams = cryptox.Argon2Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestHasher(t *testing.T) *cryptox.SecretHasher {
	t.Helper()

	h, err := cryptox.NewSecretHasher("test-pepper", testParams)
	require.NoError(t, err)
	return h
}

// clock is a settable time source for expiry tests.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store      store.Store
	clock      *clock
	clients    *ClientService
	issuer     *TokenIssuer
	introspect *IntrospectionService
	grant      *ClientCredentialsGrant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := newTestStore(t)
	c := newClock()

	f := &fixture{
		store: s,
		clock: c,
		clients: &ClientService{
			Store:  s,
			Hasher: newTestHasher(t),
			Now:    c.Now,
		},
		issuer: &TokenIssuer{
			Store:        s,
			DefaultScope: DefaultScope,
			TTL:          time.Hour,
			IssueRefresh: true,
			Now:          c.Now,
		},
		introspect: &IntrospectionService{Store: s, Now: c.Now},
	}
	f.grant = &ClientCredentialsGrant{Clients: f.clients, Issuer: f.issuer}
	return f
}
