package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRefills(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 2})
	defer rl.Stop()

	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("ward-3"))
	assert.True(t, rl.allow("ward-3"))
	assert.False(t, rl.allow("ward-3"))
	assert.True(t, rl.allow("ward-4"))

	now = now.Add(30 * time.Second)
	assert.True(t, rl.allow("ward-3"))
	assert.False(t, rl.allow("ward-3"))
}

func TestMiddleware(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 1, ExemptPaths: []string{"/health"}})
	defer rl.Stop()

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	request := func(path, client string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Client-ID", client)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusOK, request("/triage", "a").StatusCode)

	limited := request("/triage", "a")
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)
	assert.NotEmpty(t, limited.Header.Get("Retry-After"))

	assert.Equal(t, http.StatusOK, request("/triage", "b").StatusCode)
	assert.Equal(t, http.StatusOK, request("/health", "a").StatusCode)
}

func TestMiddlewareKeepsClientsApart(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 1})
	defer rl.Stop()

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/routing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	clients := []string{"ward-1", "ward-2", "ward-3"}
	for _, client := range clients {
		req := httptest.NewRequest(http.MethodGet, "/routing", nil)
		req.Header.Set("X-Client-ID", client)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, client)
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, client := range clients {
		assert.Contains(t, rl.buckets, client)
	}
	assert.Len(t, rl.buckets, len(clients))
}
