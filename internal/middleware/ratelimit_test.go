package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRateLimiter() {
	rateLimitMutex.Lock()
	rateLimitMap = make(map[string]*RateLimitEntry)
	rateLimitSweep = time.Time{}
	rateLimitMutex.Unlock()
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	resetRateLimiter()

	app := fiber.New()
	app.Use(RateLimiter(2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestSweepRateLimitsEvictsExpiredEntries(t *testing.T) {
	resetRateLimiter()
	now := time.Now()

	rateLimitMutex.Lock()
	rateLimitMap["10.0.0.1"] = &RateLimitEntry{Count: 5, ResetTime: now.Add(-time.Minute)}
	rateLimitMap["10.0.0.2"] = &RateLimitEntry{Count: 3, ResetTime: now.Add(-time.Second)}
	rateLimitMap["10.0.0.3"] = &RateLimitEntry{Count: 1, ResetTime: now.Add(time.Minute)}
	sweepRateLimits(now)
	size := len(rateLimitMap)
	_, liveKept := rateLimitMap["10.0.0.3"]
	rateLimitMutex.Unlock()

	assert.Equal(t, 1, size)
	assert.True(t, liveKept)
}

func TestRateLimiterSweepsIdleIPsOnWindowRoll(t *testing.T) {
	resetRateLimiter()

	window := 10 * time.Millisecond
	app := fiber.New()
	app.Use(RateLimiter(100, window))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	// seed an idle client whose window has long expired
	rateLimitMutex.Lock()
	rateLimitMap["192.0.2.7"] = &RateLimitEntry{Count: 50, ResetTime: time.Now().Add(-time.Hour)}
	rateLimitMutex.Unlock()

	time.Sleep(2 * window)
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	rateLimitMutex.Lock()
	_, stale := rateLimitMap["192.0.2.7"]
	rateLimitMutex.Unlock()
	assert.False(t, stale)
}
