package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/ccauth/internal/auth/http"
	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/ccauth/pkg/cryptox"
	"github.com/aussiebroadwan/ccauth/pkg/promx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the authorization server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	hasher   *cryptox.SecretHasher
	registry *prometheus.Registry
	metrics  *service.Metrics

	// Services
	clientService        *service.ClientService
	tokenIssuer          *service.TokenIssuer
	grant                *service.ClientCredentialsGrant
	introspectionService *service.IntrospectionService
	housekeepingService  *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
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
	app.metrics = service.NewMetrics(app.registry)

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher, err = cryptox.NewSecretHasher(pepper, cryptox.DefaultArgon2Params)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret hasher: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	db, err := openStore(context.Background(), app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverSQLite, "":
		return sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("AUTH_DATABASE_URL is required for the postgres driver")
		}
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	case DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.clientService = &service.ClientService{
		Store:  app.db,
		Hasher: app.hasher,
	}

	app.tokenIssuer = &service.TokenIssuer{
		Store:        app.db,
		DefaultScope: app.cfg.DefaultScope,
		TTL:          app.cfg.TokenTTL,
		IssueRefresh: app.cfg.IssueRefreshToken,
		Metrics:      app.metrics,
	}

	app.grant = &service.ClientCredentialsGrant{
		Clients:                app.clientService,
		Issuer:                 app.tokenIssuer,
		AllowInsecureTransport: app.cfg.InsecureTransport,
	}
	if app.cfg.InsecureTransport {
		app.logger.Warn("token requests over plain HTTP are accepted")
	}

	app.introspectionService = &service.IntrospectionService{
		Store:   app.db,
		Metrics: app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.metrics,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// seed registers the admin client and the seed file's clients
func (app *Application) seed(ctx context.Context) error {
	var clients []SeedClient
	if app.cfg.AdminClientID != "" {
		clients = append(clients, SeedClient{
			ClientID:     app.cfg.AdminClientID,
			ClientSecret: app.cfg.AdminClientSecret,
		})
	}

	if app.cfg.SeedFile != "" {
		f, err := LoadSeedFile(app.cfg.SeedFile)
		if err != nil {
			return err
		}
		clients = append(clients, f.Clients...)
	}

	return SeedClients(ctx, app.clientService, app.logger, clients)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.ClientService = app.clientService
	router.Grant = app.grant
	router.IntrospectionService = app.introspectionService
	router.RateLimits = app.cfg.RateLimits
	router.TrustForwardedProto = app.cfg.TrustForwardedProto
	router.HTTPMetrics = promx.NewHTTPMetrics(app.registry, "ccauth")
	router.Gatherer = app.registry
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
