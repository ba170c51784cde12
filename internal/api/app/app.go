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

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	httpapi "github.com/aussiebroadwan/storefront/internal/api/http"
	"github.com/aussiebroadwan/storefront/internal/api/mail"
	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/internal/api/sms"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application wires the storefront API together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager
	mail       mail.Sender
	sms        sms.Sender

	tokenService        *service.TokenService
	authService         *service.AuthService
	mfaService          *service.MFAService
	userService         *service.UserService
	auditService        *service.AuditService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "storefront-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	keyManager, err := InitSigningKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keyManager = keyManager

	app.initSenders()
	app.initServices()

	if err := app.ensureAdmin(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("storefront api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down storefront api...")

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

	app.logger.Info("storefront api stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initSenders picks real providers when configured and log senders otherwise.
func (app *Application) initSenders() {
	switch app.cfg.SMSProvider {
	case "twilio":
		app.sms = sms.NewTwilioSender(app.cfg.TwilioAccountSID, app.cfg.TwilioAuthToken, app.cfg.TwilioFrom, nil)
		app.logger.Info("sms provider configured", "provider", "twilio")
	default:
		app.sms = &sms.LogSender{Logger: app.logger}
		app.logger.Warn("sms messages are logged, not delivered")
	}

	if app.cfg.SMTPHost != "" {
		app.mail = mail.NewSMTPSender(mail.SMTPConfig{
			Host:       app.cfg.SMTPHost,
			Port:       app.cfg.SMTPPort,
			Username:   app.cfg.SMTPUsername,
			Password:   app.cfg.SMTPPassword,
			From:       app.cfg.SMTPFrom,
			SkipVerify: app.cfg.SMTPSkipVerify,
		})
		app.logger.Info("smtp configured", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
	} else {
		app.mail = &mail.LogSender{Logger: app.logger}
		app.logger.Warn("mails are logged, not delivered")
	}
}

func (app *Application) initServices() {
	recorder := audit.NewRecorder(app.db)

	app.tokenService = &service.TokenService{
		Store:        app.db,
		Keys:         app.keyManager,
		Issuer:       app.cfg.Issuer,
		AuthTokenTTL: app.cfg.AuthTokenTTL,
	}
	app.authService = &service.AuthService{
		Store:   app.db,
		Tokens:  app.tokenService,
		Mail:    app.mail,
		AppName: app.cfg.AppName,
		AppURL:  app.cfg.AppURL,
	}
	app.mfaService = &service.MFAService{
		Store:   app.db,
		Tokens:  app.tokenService,
		SMS:     app.sms,
		Audit:   recorder,
		AppName: app.cfg.AppName,
	}
	app.userService = &service.UserService{Store: app.db, Audit: recorder}
	app.auditService = &service.AuditService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetention,
	)
}

// ensureAdmin seeds the configured admin account, if any.
func (app *Application) ensureAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" {
		return nil
	}
	if app.cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	u, changed, err := app.userService.EnsureAdmin(ctx, app.cfg.AdminEmail, app.cfg.AdminName, app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}
	if changed {
		app.logger.Info("admin account ensured", "user_id", u.ID, "email", u.Email)
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keyManager.KeySet, BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.UserService = app.userService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
