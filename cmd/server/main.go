package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-print"

	"github.com/zelvyn/zelvyn-api"
	"github.com/zelvyn/zelvyn-api/activitymap"
	"github.com/zelvyn/zelvyn-api/config"
	"github.com/zelvyn/zelvyn-api/logging"
	"github.com/zelvyn/zelvyn-api/messaging"
	"github.com/zelvyn/zelvyn-api/profiles"
	"github.com/zelvyn/zelvyn-api/provider/google"
	"github.com/zelvyn/zelvyn-api/repository"
)

// App holds the wired components of the server
type App struct {
	config    *config.Config
	logger    *slog.Logger
	repo      *repository.Manager
	service   *auth.Service
	auther    *auth.RouteAuthenticator
	validator *google.TokenValidator
	messaging *messaging.Service
	profiles  *profiles.Service
	srv       *fiber.App
}

func main() {
	configPath := flag.String("config", os.Getenv("ZELVYN_CONFIG"), "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout),
	}

	if !cfg.IsProduction() {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(redacted(cfg)))
		fmt.Println("============")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app); err != nil {
		app.logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, app *App) error {
	if err := WithPersistence(ctx, app); err != nil {
		return err
	}
	defer app.repo.Close()

	if err := WithAuth(ctx, app); err != nil {
		return err
	}
	if app.validator != nil {
		defer app.validator.Close()
	}

	WithHTTPServer(app)
	RegisterRoutes(app)

	errc := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", app.config.Addr(), "env", app.config.App.Env)
		errc <- app.srv.Listen(app.config.Addr())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	if err := app.srv.ShutdownWithContext(shutdownCtx); err != nil {
		app.logger.Warn("http shutdown", "error", err)
	}

	if err := app.service.Dispatcher().Wait(shutdownCtx); err != nil {
		app.logger.Warn("background tasks did not finish", "error", err)
	}

	return nil
}

// WithPersistence opens the database, applies migrations and builds the stores
func WithPersistence(ctx context.Context, app *App) error {
	db, dialect, err := repository.Open(ctx, app.config.Database.DSN)
	if err != nil {
		return err
	}

	if app.config.Database.Debug {
		db.AddQueryHook(&repository.QueryLogger{Logger: app.logger.With("component", "db")})
	}

	otp := repository.NewOTPLedger(db, app.config.Auth.OTPTTL, nil)
	app.repo = repository.NewRepositoryManager(db, dialect, otp)
	if err := app.repo.Validate(); err != nil {
		_ = db.Close()
		return err
	}

	if err := app.repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	app.logger.Info("database ready", "dialect", dialect)
	return nil
}

// WithAuth builds the token, federated, notification and account services
func WithAuth(ctx context.Context, app *App) error {
	cfg := app.config
	lgr := app.logger

	tokens := auth.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		auth.WithTokenIssuer(cfg.GetIssuer()),
		auth.WithTokenLogger(lgr.With("component", "tokens")),
	)

	var federated auth.FederatedVerifier
	if cfg.Google.ClientID != "" {
		gcfg := google.DefaultConfig(cfg.Google.ClientID)
		if cfg.Google.JWKSURL != "" {
			gcfg.JWKSURL = cfg.Google.JWKSURL
		}
		gcfg.Ctx = ctx
		gcfg.Logger = lgr.With("component", "google")

		validator, err := google.NewTokenValidator(gcfg)
		if err != nil {
			return fmt.Errorf("google token validator: %w", err)
		}
		app.validator = validator
		federated = validator
	} else {
		lgr.Warn("GOOGLE_CLIENT_ID is not set, Google sign-in is disabled")
	}

	var sender messaging.Sender
	if cfg.SMTP.Host != "" {
		sender = messaging.NewSMTPSender(messaging.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
			Timeout:  20 * time.Second,
		})
	} else {
		lgr.Warn("SMTP is not configured, emails are printed to stdout")
		sender = messaging.NewConsoleSender(os.Stdout)
	}

	templates, err := messaging.NewTemplates(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	notifier := messaging.NewNotifier(sender, templates, cfg.App.Name).
		WithLogger(lgr.With("component", "notifier"))

	var ledger auth.OTPLedger = app.repo.OTPCodes()
	if cfg.Auth.OTPStore == config.OTPStoreMemory {
		ledger = auth.NewMemoryLedger(auth.WithLedgerTTL(cfg.GetOTPTTL()))
	}

	app.service = auth.NewService(app.repo.Users(), tokens).
		WithConfig(cfg).
		WithLogger(lgr.With("component", "auth")).
		WithLedger(ledger).
		WithFederatedVerifier(federated).
		WithNotifier(notifier).
		WithDispatcher(auth.NewDispatcher(lgr.With("component", "background"))).
		WithActivitySink(activitymap.LogSink(lgr.With("component", "activity")))

	gate := auth.NewGate(auth.NewTokenVerifier(tokens, federated), app.repo.Users()).
		WithLogger(lgr.With("component", "gate"))
	app.auther = auth.NewHTTPAuthenticator(gate, cfg).WithLogger(lgr.With("component", "http"))

	app.messaging = messaging.NewService(sender, notifier, lgr.With("component", "messaging"))
	app.profiles = profiles.NewService(app.repo.Profiles(), app.repo.Profiles(), app.repo.Users(), lgr.With("component", "profiles"))

	return nil
}

// WithHTTPServer creates the fiber app and its global middleware
func WithHTTPServer(app *App) {
	cfg := app.config

	app.srv = fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return auth.WriteResult(c, auth.Fail(fe.Code, fe.Message))
			}
			return app.auther.ErrorHandler(c, err)
		},
	})

	app.srv.Use(recover.New())
	app.srv.Use(requestid.New())
	app.srv.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.srv.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
	}))
}

// RegisterRoutes mounts every API group plus the health and fallback routes
func RegisterRoutes(app *App) {
	srv := app.srv

	srv.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the " + app.config.App.Name + " API",
			"version": "1.0.0",
		})
	}).Name("root")

	srv.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Server is running",
		})
	}).Name("health")

	api := srv.Group("/api")

	auth.RegisterAuthRoutes(api.Group("/auth"),
		auth.WithControllerService(app.service),
		auth.WithControllerAuthenticator(app.auther),
		auth.WithControllerLogger(app.logger.With("component", "auth_controller")),
	)

	messaging.NewController(app.messaging, app.auther, app.logger.With("component", "messaging_controller")).
		RegisterRoutes(api.Group("/messaging"))

	profiles.NewController(app.profiles, app.auther, app.logger.With("component", "profiles_controller")).
		RegisterRoutes(api.Group("/profiles"))

	srv.Use(func(c *fiber.Ctx) error {
		return auth.WriteResult(c, auth.Fail(fiber.StatusNotFound, "Route not found"))
	})
}

// redacted returns a copy of cfg that is safe to print
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	if out.Auth.SigningKey != "" {
		out.Auth.SigningKey = "******"
	}
	if out.SMTP.Password != "" {
		out.SMTP.Password = "******"
	}
	return out
}
