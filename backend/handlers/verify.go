package handlers

//go:generate mockgen -source=verify.go -destination=mock/verify.go -package=mock

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gatekeep/shield/backend/models"
	"github.com/gatekeep/shield/backend/utils"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/verification"
	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie  = "shield_session"
	requestTimeout = 20 * time.Second
)

// Verifier is the verification flow as seen by the web pages.
type Verifier interface {
	Challenge(ctx context.Context, sessionID, requestID string) verification.Outcome
	Submit(ctx context.Context, sub verification.Submission) verification.Outcome
	CheckBan(ctx context.Context, requestID, address string) (bool, error)
	SessionRequest(sessionID string) (string, bool)
}

type WebApp struct {
	Verifier     Verifier
	SessionTTL   time.Duration
	SecureCookie bool
	Version      string
	Commit       string
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, fiber.Map{
			"status":  "healthy",
			"version": webApp.Version,
			"commit":  webApp.Commit,
		})
	}
}

func (w *WebApp) setSession(c *fiber.Ctx, sessionID string) {
	if sessionID == "" || sessionID == c.Cookies(SessionCookie) {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(w.SessionTTL),
		HTTPOnly: true,
		Secure:   w.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func renderMessage(c *fiber.Ctx, status int, heading, message string) error {
	return c.Status(status).Render("error", models.MessagePage{
		Title:   heading,
		Heading: heading,
		Message: message,
	})
}

func renderChallenge(c *fiber.Ctx, status int, out verification.Outcome, errMsg string) error {
	page := models.ChallengePage{
		Title:     "Verification",
		RequestID: out.RequestID,
		Error:     errMsg,
	}
	if out.Challenge != nil {
		page.Image = utils.PNGDataURI(out.Challenge.Image)
	}
	return c.Status(status).Render("verify", page)
}

// renderOutcome writes the page for every outcome that does not carry a
// challenge.
func renderOutcome(c *fiber.Ctx, out verification.Outcome) error {
	switch out.Kind {
	case verification.OutcomeDenied:
		return c.Status(fiber.StatusForbidden).Render("banned", models.MessagePage{Title: "Access denied"})
	case verification.OutcomeExpired, verification.OutcomeAlreadyUsed:
		return renderMessage(c, fiber.StatusGone, "Link expired",
			"This verification link has expired or was already used. Request a new one from the bot.")
	case verification.OutcomeInvalid:
		return renderMessage(c, fiber.StatusBadRequest, "Invalid link",
			"This verification link is not valid. Request a new one from the bot.")
	default:
		return renderMessage(c, fiber.StatusBadGateway, "Something went wrong",
			"We could not complete your verification. Please try again in a moment.")
	}
}

// VerifyPage serves GET /verify?requestId=.
func VerifyPage(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		requestID := strings.TrimSpace(c.Query("requestId"))
		out := webApp.Verifier.Challenge(ctx, c.Cookies(SessionCookie), requestID)
		webApp.setSession(c, out.SessionID)

		if out.Kind == verification.OutcomeChallenged {
			return renderChallenge(c, fiber.StatusOK, out, "")
		}
		if out.Err != nil {
			slog.Error("Failed to issue challenge",
				slog.String("type", "web"),
				slog.String("request_id", requestID),
				slog.Any("error", out.Err),
			)
		}
		return renderOutcome(c, out)
	}
}

// VerifySubmit serves POST /verify-submit.
func VerifySubmit(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return renderMessage(c, fiber.StatusBadRequest, "Invalid link",
				"The form could not be read. Open the verification link again.")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		out := webApp.Verifier.Submit(ctx, verification.Submission{
			SessionID:       c.Cookies(SessionCookie),
			RequestID:       strings.TrimSpace(req.RequestID),
			Answer:          req.Answer,
			ObservedAddress: utils.GetIPAddress(c),
			ReportedAddress: strings.TrimSpace(req.Address),
		})

		switch out.Kind {
		case verification.OutcomeVerified:
			return c.Redirect(out.InviteLink, fiber.StatusFound)
		case verification.OutcomeIncorrect:
			return renderChallenge(c, fiber.StatusBadRequest, out, "Incorrect answer, try again.")
		default:
			return renderOutcome(c, out)
		}
	}
}

// CheckBan serves POST /check-ban. It is advisory: the submit step checks
// the deny lists again.
func CheckBan(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CheckBanRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body")
		}

		requestID := strings.TrimSpace(req.RequestID)
		if requestID == "" {
			requestID, _ = webApp.Verifier.SessionRequest(c.Cookies(SessionCookie))
		}
		if requestID == "" {
			return utils.SendBadRequest(c, "Missing request id")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		addresses := []string{utils.GetIPAddress(c)}
		if reported := strings.TrimSpace(req.Address); reported != "" {
			addresses = append(addresses, reported)
		}

		banned := false
		for _, addr := range addresses {
			hit, err := webApp.Verifier.CheckBan(ctx, requestID, addr)
			switch {
			case errors.Is(err, access.ErrInvalidID), errors.Is(err, access.ErrNotFound):
				return utils.SendNotFound(c, "Unknown request")
			case err != nil:
				slog.Error("Ban check failed",
					slog.String("type", "web"),
					slog.String("request_id", requestID),
					slog.Any("error", err),
				)
				return utils.SendBadGateway(c, "Ban check unavailable")
			}
			if hit {
				banned = true
				break
			}
		}

		return c.JSON(models.CheckBanResponse{Banned: banned})
	}
}

func Banned() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).Render("banned", models.MessagePage{Title: "Access denied"})
	}
}
