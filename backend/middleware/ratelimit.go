package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gatekeep/shield/backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	lru "github.com/hashicorp/golang-lru"
)

const (
	// DefaultTrackedClients bounds how many client addresses the limiter
	// remembers. The least recently seen address is forgotten first.
	DefaultTrackedClients = 50_000

	DefaultRateLimit  = 30
	DefaultRateWindow = time.Minute
)

type storageEntry struct {
	value     []byte
	expiresAt time.Time
}

// lruStorage is a fiber.Storage bounded to a fixed number of keys.
type lruStorage struct {
	cache *lru.Cache
	now   func() time.Time
}

var _ fiber.Storage = (*lruStorage)(nil)

func newLRUStorage(capacity int) *lruStorage {
	if capacity <= 0 {
		capacity = DefaultTrackedClients
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New(capacity)
	return &lruStorage{cache: cache, now: time.Now}
}

func (s *lruStorage) Get(key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	entry := v.(storageEntry)
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.cache.Remove(key)
		return nil, nil
	}
	return entry.value, nil
}

func (s *lruStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	entry := storageEntry{value: val}
	if exp > 0 {
		entry.expiresAt = s.now().Add(exp)
	}
	s.cache.Add(key, entry)
	return nil
}

func (s *lruStorage) Delete(key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *lruStorage) Reset() error {
	s.cache.Purge()
	return nil
}

func (s *lruStorage) Close() error {
	return nil
}

func (s *lruStorage) Len() int {
	return s.cache.Len()
}

// RateLimit limits requests per client address with a sliding window.
// Routes sharing the returned handler share one budget. A non-positive
// limit or window falls back to the defaults.
func RateLimit(limit int, window time.Duration) fiber.Handler {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}

	return limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        window,
		KeyGenerator:      utils.GetIPAddress,
		Storage:           newLRUStorage(DefaultTrackedClients),
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			seconds, _ := strconv.Atoi(c.GetRespHeader(fiber.HeaderRetryAfter))
			wait := time.Duration(seconds) * time.Second
			slog.Warn("Rate limit exceeded",
				slog.String("type", "web"),
				slog.String("ip", utils.GetIPAddress(c)),
				slog.String("path", c.Path()),
				slog.Int("limit", limit),
				slog.Duration("retry_after", wait),
			)
			return utils.SendTooManyRequests(c, wait)
		},
	})
}
