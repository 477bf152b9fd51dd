package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()
	return Config{
		DatabaseDriver:       DriverMemory,
		PepperFile:           filepath.Join(dir, "pepper"),
		TokenTTL:             time.Hour,
		DefaultScope:         "profile",
		IssueRefreshToken:    true,
		InsecureTransport:    true,
		RateLimits:           httpx.DefaultRateLimits(),
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := LoadConfig()
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "auth.db", cfg.DatabaseFile)
	assert.Equal(t, 5003, cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "profile", cfg.DefaultScope)
	assert.True(t, cfg.IssueRefreshToken)
	assert.False(t, cfg.InsecureTransport)
	assert.Equal(t, time.Minute, cfg.HousekeepingInterval)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_DATABASE_DRIVER", "postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://localhost/ccauth")
	t.Setenv("AUTH_TOKEN_EXPIRES_IN", "60")
	t.Setenv("AUTH_ISSUE_REFRESH_TOKEN", "false")
	t.Setenv("AUTH_INSECURE_TRANSPORT", "true")
	t.Setenv("PORT", "9000")
	t.Setenv("RATELIMIT_STRICT_BURST", "7")

	cfg := LoadConfig()
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/ccauth", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.TokenTTL)
	assert.False(t, cfg.IssueRefreshToken)
	assert.True(t, cfg.InsecureTransport)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 7, cfg.RateLimits.Strict.Burst)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_DEFAULT_SCOPE=read\n"), 0o600))
	// Setenv restores the variable once godotenv has set it
	t.Setenv("AUTH_DEFAULT_SCOPE", "")
	require.NoError(t, os.Unsetenv("AUTH_DEFAULT_SCOPE"))

	cfg := LoadConfig()
	assert.Equal(t, "read", cfg.DefaultScope)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clients:
  - client_id: admin_client
    client_secret: admin_secret
  - client_id: client_id_test
    client_secret: client_secret_test
`), 0o600))

	f, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, f.Clients, 2)
	assert.Equal(t, SeedClient{ClientID: "admin_client", ClientSecret: "admin_secret"}, f.Clients[0])

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "oracle"

	_, err := New(cfg)
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestNew_PostgresRequiresURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = DriverPostgres

	_, err := New(cfg)
	assert.ErrorContains(t, err, "AUTH_DATABASE_URL")
}

func TestNew_SeedsClients(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminClientID = "admin_client"
	cfg.AdminClientSecret = "admin_secret"

	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
clients:
  - client_id: admin_client
    client_secret: admin_secret
  - client_id: client_id_test
    client_secret: client_secret_test
`), 0o600))
	cfg.SeedFile = seed

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	sdk := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	for _, c := range [][2]string{{"admin_client", "admin_secret"}, {"client_id_test", "client_secret_test"}} {
		tok, err := sdk.ClientCredentialsGrant(ctx, c[0], c[1], nil)
		require.NoError(t, err, c[0])
		assert.NotEmpty(t, tok.AccessToken)
	}

	// Metrics from the service layer reach /metrics
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_PepperIsPersisted(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(cfg)
	require.NoError(t, err)
	_ = app.db.Close()

	b, err := os.ReadFile(cfg.PepperFile)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(b)))
}

func TestHandler_RejectsPlainHTTPByDefault(t *testing.T) {
	cfg := testConfig(t)
	cfg.InsecureTransport = false
	cfg.AdminClientID = "c1"
	cfg.AdminClientSecret = "s1"

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	form := url.Values{"grant_type": {"client_credentials"}, "client_id": {"c1"}, "client_secret": {"s1"}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	app.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}
