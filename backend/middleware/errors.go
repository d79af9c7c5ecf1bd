package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gatekeep/shield/backend/models"
	"github.com/gofiber/fiber/v2"
)

// CustomErrorHandler handles application errors
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500 server error
	code := fiber.StatusInternalServerError
	message := "Something went wrong on our side. Please try again later."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("Unhandled web error",
			slog.String("type", "web"),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}

	if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
		return c.Status(code).JSON(models.Failure(fmt.Sprintf("HTTP_%d", code), message))
	}

	renderErr := c.Status(code).Render("error", models.MessagePage{
		Title:   "Error",
		Code:    code,
		Heading: "Something went wrong",
		Message: message,
	})
	if renderErr != nil {
		return c.Status(code).SendString(fmt.Sprintf("Error %d: %s", code, message))
	}
	return nil
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Set("Cache-Control", "no-store")

		// The challenge image is inlined and the page looks up its public
		// address before submitting. The form redirects to the invite.
		c.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self' https://api.ipify.org; "+
				"form-action 'self' https://discord.gg https://discord.com; "+
				"frame-ancestors 'none';")

		return c.Next()
	}
}
