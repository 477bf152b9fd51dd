package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	resourcehttp "github.com/aussiebroadwan/ccauth/internal/resource/http"
	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/cachex"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/promx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const BuildVersion = "v0.1.0"

// Application is the resource server: a bearer-protected API that validates
// tokens by introspecting them at the authorization server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	registry *prometheus.Registry
	cache    cachex.Cache
	closers  []io.Closer

	server *http.Server
	router *resourcehttp.Router
}

func New(cfg Config) (*Application, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("RESOURCE_CLIENT_ID and RESOURCE_CLIENT_SECRET are required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "resource-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	in, err := app.introspector(context.Background())
	if err != nil {
		return nil, err
	}

	router := resourcehttp.NewRouter(BuildVersion, in, cfg.RequiredScope, app.logger)
	router.HTTPMetrics = promx.NewHTTPMetrics(app.registry, "ccauth_resource")
	router.Gatherer = app.registry
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return app, nil
}

// introspector builds the remote introspection chain, cached when a TTL is
// configured.
func (app *Application) introspector(ctx context.Context) (httpx.Introspector, error) {
	sdk := authsdk.NewSDKClient(app.cfg.AuthServerURL)
	sdk.HTTPClient.Timeout = app.cfg.IntrospectionTimeout

	tokens := authsdk.NewTokenCache(sdk, app.cfg.ClientID, app.cfg.ClientSecret, []string{app.cfg.RequiredScope})
	var in httpx.Introspector = authsdk.NewRemoteIntrospector(authsdk.NewAuthorizedClient(sdk, tokens))

	if app.cfg.IntrospectionCacheTTL <= 0 {
		return in, nil
	}

	if app.cfg.RedisAddr != "" {
		rc, err := cachex.DialRedis(ctx, app.cfg.RedisAddr, app.cfg.RedisDB, "ccauth:resource:")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.cache = rc
		app.closers = append(app.closers, rc)
		app.logger.Info("introspection cache backed by redis", "addr", app.cfg.RedisAddr)
	} else {
		app.cache = cachex.NewMemory(time.Minute)
	}

	return &authsdk.CachedIntrospector{
		Next:  in,
		Cache: app.cache,
		TTL:   app.cfg.IntrospectionCacheTTL,
	}, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves until SIGINT or SIGTERM.
func (app *Application) Run() error {
	app.logger.Info("resource service starting",
		"port", app.cfg.Port,
		"auth_server", app.cfg.AuthServerURL,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		return app.Shutdown()
	}
	return nil
}

func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		_ = app.server.Close()
	}

	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c.Close())
	}

	app.logger.Info("resource service stopped")
	return errors.Join(errs...)
}
