package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		nilRedis bool
		calls    int
		allowed  []bool
		wantErr  bool
	}{
		{"test environment bypass", "test", false, 3, []bool{true, true, true}, false},
		{"development environment bypass", "development", true, 2, []bool{true, true}, false},
		{"production enforces limit", "production", false, 3, []bool{true, true, false}, false},
		{"production without redis errors", "production", true, 1, []bool{false}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rdb *redis.Client
			if !tt.nilRedis {
				_, rdb = newTestRedis(t)
			}
			limiter := NewRateLimiter(rdb, tt.env, FailOpen)

			for i := 0; i < tt.calls; i++ {
				ok, err := limiter.Allow(context.Background(), "like", "user:1", 2, time.Minute)
				if tt.wantErr {
					assert.Error(t, err)
				} else {
					require.NoError(t, err)
				}
				assert.Equal(t, tt.allowed[i], ok, "call %d", i)
			}
		})
	}
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb, "production", FailOpen)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "signup", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "signup", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = limiter.Allow(ctx, "signup", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_Middleware(t *testing.T) {
	t.Run("returns 429 after limit", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		limiter := NewRateLimiter(rdb, "production", FailOpen)

		app := fiber.New()
		app.Post("/posts", limiter.Limit("create_post", 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusCreated)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/posts", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/posts", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})

	t.Run("fail closed without redis", func(t *testing.T) {
		limiter := NewRateLimiter(nil, "production", FailClosed)
		app := fiber.New()
		app.Get("/", limiter.Limit("feed", 10, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("fail open without redis", func(t *testing.T) {
		limiter := NewRateLimiter(nil, "production", FailOpen)
		app := fiber.New()
		app.Get("/", limiter.Limit("feed", 10, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
