package utils

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gatekeep/shield/backend/models"
	"github.com/gofiber/fiber/v2"
)

func SendSuccess(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(models.OK(data))
}

func SendError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(models.Failure(code, message))
}

func SendBadRequest(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusNotFound, "NOT_FOUND", message)
}

// SendBadGateway is used when a collaborator behind the web server fails.
func SendBadGateway(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", message)
}

func SendTooManyRequests(c *fiber.Ctx, wait time.Duration) error {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))

	res := models.Failure("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
	res.Error.RetryAfter = seconds
	return c.Status(fiber.StatusTooManyRequests).JSON(res)
}

// GetIPAddress extracts the client IP address. Fiber only honours the
// configured proxy header for trusted proxies; when the header carries a
// chain the first hop is the client.
func GetIPAddress(c *fiber.Ctx) string {
	ip := c.IP()
	if first, _, ok := strings.Cut(ip, ","); ok {
		ip = first
	}
	return strings.TrimSpace(ip)
}
