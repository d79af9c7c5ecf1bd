package middleware

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(limit int, window time.Duration) *fiber.App {
	app := fiber.New()
	app.Get("/", RateLimit(limit, window), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func hit(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRateLimit(t *testing.T) {
	app := newLimitedApp(2, time.Minute)

	require.Equal(t, fiber.StatusOK, hit(t, app))
	require.Equal(t, fiber.StatusOK, hit(t, app))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	retry, err := strconv.Atoi(resp.Header.Get(fiber.HeaderRetryAfter))
	require.NoError(t, err)
	require.Positive(t, retry)
}

func TestRateLimit_NonPositiveFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{name: "zero limit", limit: 0, window: time.Minute},
		{name: "negative limit", limit: -5, window: time.Minute},
		{name: "zero window", limit: 0, window: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newLimitedApp(tt.limit, tt.window)
			for i := 0; i < DefaultRateLimit; i++ {
				require.Equal(t, fiber.StatusOK, hit(t, app))
			}
			require.Equal(t, fiber.StatusTooManyRequests, hit(t, app))
		})
	}
}

func TestLRUStorage(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newLRUStorage(2)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set("a", []byte("1"), time.Minute))
	require.NoError(t, s.Set("b", []byte("2"), time.Minute))
	require.NoError(t, s.Set("c", []byte("3"), time.Minute))
	require.Equal(t, 2, s.Len())

	got, err := s.Get("a")
	require.NoError(t, err)
	require.Nil(t, got, "least recent client is evicted")

	got, err = s.Get("c")
	require.NoError(t, err)
	require.Equal(t, []byte("3"), got)

	now = now.Add(2 * time.Minute)
	got, err = s.Get("c")
	require.NoError(t, err)
	require.Nil(t, got, "expired entry is dropped")
	require.Equal(t, 1, s.Len())
}
