package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatekeep/shield/backend/handlers"
	"github.com/gatekeep/shield/backend/middleware"
	"github.com/gatekeep/shield/backend/templates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 15 * time.Second

// Metrics is the HTTP side of the metrics collector.
type Metrics interface {
	middleware.HTTPRecorder
	Handler() http.Handler
}

type Options struct {
	Verifier       handlers.Verifier
	Metrics        Metrics
	Version        string
	Commit         string
	SessionTTL     time.Duration
	SecureCookie   bool
	RateLimit      int
	RateWindow     time.Duration
	ProxyHeader    string
	TrustedProxies []string
}

// New builds the verification web app.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:                 "Shield",
		ServerHeader:            "Shield",
		Views:                   templates.New(),
		ErrorHandler:            middleware.CustomErrorHandler,
		ProxyHeader:             opts.ProxyHeader,
		EnableTrustedProxyCheck: opts.ProxyHeader != "",
		TrustedProxies:          opts.TrustedProxies,
		DisableStartupMessage:   true,
	})

	var recorder middleware.HTTPRecorder
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.LoggingMiddleware(recorder))
	app.Use(middleware.SecurityHeaders())

	webApp := &handlers.WebApp{
		Verifier:     opts.Verifier,
		SessionTTL:   opts.SessionTTL,
		SecureCookie: opts.SecureCookie,
		Version:      opts.Version,
		Commit:       opts.Commit,
	}
	setupRoutes(app, webApp, opts)
	return app
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp, opts Options) {
	app.Get("/health", handlers.HealthCheck(webApp))
	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	}

	app.Get("/verify", handlers.VerifyPage(webApp))
	app.Get("/banned", handlers.Banned())

	limited := middleware.RateLimit(opts.RateLimit, opts.RateWindow)
	app.Post("/verify-submit", limited, handlers.VerifySubmit(webApp))
	app.Post("/check-ban", limited, handlers.CheckBan(webApp))

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "The page you are looking for does not exist.")
	})
}

// Serve listens on address until ctx is done, then shuts the app down
// gracefully.
func Serve(ctx context.Context, app *fiber.App, address string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting web server",
			slog.String("type", "sys"),
			slog.String("address", address),
		)
		errCh <- app.Listen(address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down web server...", slog.String("type", "sys"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
