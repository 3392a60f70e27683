package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tenantry/internal/tenantry/http"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store/drivers/postgres"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/tokens"
	"github.com/aussiebroadwan/tenantry/pkg/jwtx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application owns every long-lived dependency of the service.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *obs.Metrics

	db       store.Store
	tokens   tokens.Store
	verifier jwtx.Verifier

	userService         *service.UserService
	accountService      *service.AccountService
	invitationService   *service.InvitationService
	validator           *service.InvitationValidator
	resolver            *service.MembershipResolver
	signupService       *service.SignupService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService
	housekeepingStarted bool

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tenantry",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: obs.NewMetrics(),
	}
	app.metrics.SetBuildInfo(BuildVersion)

	verifier, err := jwtx.NewHMACVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.bootstrap(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.housekeepingStarted = true

	app.logger.Info("tenantry starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
		"token_store", app.cfg.TokenStoreMode,
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
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops background work and closes the
// store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tenantry...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingStarted {
		app.housekeepingService.Stop()
		app.housekeepingStarted = false
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tenantry stopped")
	return nil
}

func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseDSN)
	default:
		db, err = sqlite.NewStore(sqliteDSN(app.cfg.DatabaseDSN))
	}
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

// sqliteDSN turns a bare file path into a modernc DSN with a busy timeout
// and WAL. Explicit "file:" DSNs and ":memory:" pass through untouched.
func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)
}

func (app *Application) initServices() error {
	ts, err := tokens.New(tokens.Mode(app.cfg.TokenStoreMode), app.db, tokens.Options{TTL: app.cfg.InviteTTL})
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}
	app.tokens = ts

	gate := &service.RoleGate{Store: app.db, Metrics: app.metrics}

	app.userService = &service.UserService{Store: app.db}
	app.accountService = &service.AccountService{Store: app.db, Gate: gate}
	app.invitationService = &service.InvitationService{
		Store:   app.db,
		Gate:    gate,
		TTL:     app.cfg.InviteTTL,
		Metrics: app.metrics,
	}
	app.validator = &service.InvitationValidator{Store: app.db}
	app.resolver = &service.MembershipResolver{Store: app.db, Metrics: app.metrics}
	app.signupService = &service.SignupService{
		Store:   app.db,
		Tokens:  app.tokens,
		Metrics: app.metrics,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.tokens,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = app.metrics
	return nil
}

func (app *Application) bootstrap() error {
	if app.cfg.BootstrapAdminID == "" {
		return nil
	}
	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapService.EnsureAdmin(ctx, app.cfg.BootstrapAdminID, app.cfg.BootstrapAdminEmail); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	router.UserService = app.userService
	router.AccountService = app.accountService
	router.InvitationService = app.invitationService
	router.Validator = app.validator
	router.MembershipResolver = app.resolver
	router.SignupService = app.signupService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
