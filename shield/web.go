package shield

import (
	"strings"

	"github.com/gatekeep/shield/backend/server"
	"github.com/gofiber/fiber/v2"
)

// WebServer builds the verification web app over the app's orchestrator.
func (a *App) WebServer(cfg Config, version, commit string) *fiber.App {
	return server.New(server.Options{
		Verifier:       a.Orchestrator,
		Metrics:        a.Metrics,
		Version:        version,
		Commit:         commit,
		SessionTTL:     cfg.Verification.SessionTTL.Duration,
		SecureCookie:   strings.HasPrefix(cfg.Web.PublicURL, "https://"),
		RateLimit:      cfg.Web.RateLimit,
		RateWindow:     cfg.Web.RateWindow.Duration,
		ProxyHeader:    cfg.Web.ProxyHeader,
		TrustedProxies: cfg.Web.TrustedProxies,
	})
}
