package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nestmarket/authgate/internal/gate/guard"
	httpapi "github.com/nestmarket/authgate/internal/gate/http"
	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/internal/gate/store/drivers/sqlite"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/nestmarket/authgate/pkg/cryptox"
	"github.com/nestmarket/authgate/pkg/jwtx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	signKeyInfo = "session-sign"
	sealKeyInfo = "token-seal"
)

// Application wires the gateway: config, log, audit store, services, guard,
// and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	upstream *upstream.Client

	loginService        *service.LoginService
	sessionService      *service.SessionService
	inviteService       *service.InviteService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("authgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"upstream_configured", app.upstream.BaseURL != "",
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the server, background worker, and store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authgate stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	secret := []byte(app.cfg.SessionSecret)

	signKey, err := cryptox.DeriveKey(secret, signKeyInfo)
	if err != nil {
		return fmt.Errorf("derive signing key: %w", err)
	}
	sealKey, err := cryptox.DeriveKey(secret, sealKeyInfo)
	if err != nil {
		return fmt.Errorf("derive sealing key: %w", err)
	}

	app.upstream = upstream.NewClient(app.cfg.UpstreamAPIURL)

	app.loginService = &service.LoginService{
		Upstream: app.upstream,
		Store:    app.db,
	}
	app.sessionService = &service.SessionService{
		Upstream: app.upstream,
		Store:    app.db,
		Signer:   jwtx.NewHS256(signKey, app.cfg.Issuer),
		SealKey:  sealKey,
		TTL:      jwtx.DefaultSessionTTL,
	}
	app.inviteService = &service.InviteService{
		Upstream: app.upstream,
		Store:    app.db,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.EventRetention,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.CookieName = app.cfg.CookieName
	router.SecureCookies = app.cfg.SecureCookies
	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.InviteService = app.inviteService

	nav := guard.New(guard.Config{
		Verifier:    app.sessionService.Signer,
		PublicAuth:  guard.PublicAuthRoutes(),
		Protected:   guard.ProtectedRoutes(),
		SignInPath:  app.cfg.SignInPath,
		LandingPath: app.cfg.LandingPath,
		CookieName:  app.cfg.CookieName,
		Unmatched:   guard.ParseUnmatchedPolicy(app.cfg.GuardUnmatchedPolicy),
	})
	router.Use(nav.Middleware())

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
