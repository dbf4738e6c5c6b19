package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func serve(t *testing.T, l Limiter) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.POST("/add-to-cart/:slug", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Middleware(l,
		func(c echo.Context) string { return "user-1" },
		func(c echo.Context) error { return c.NoContent(http.StatusTooManyRequests) },
	))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/add-to-cart/blue-shirt", nil))
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stub   *stubLimiter
		status int
	}{
		{"allowed", &stubLimiter{allow: true}, http.StatusOK},
		{"denied", &stubLimiter{allow: false}, http.StatusTooManyRequests},
		{"limiter down fails open", &stubLimiter{allow: false, err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.stub)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, []string{"user-1"}, tt.stub.keys)
		})
	}
}

func TestRedisLimiter_UnreachableRedisAllows(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, "rl:test", 1, time.Minute)
	ok, err := l.Allow(context.Background(), "user-1")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_SubMillisecondWindow(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name   string
		window time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Second},
		{"microseconds", 500 * time.Microsecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRedisLimiter(client, "rl:test", 1, tt.window)
			assert.Equal(t, time.Millisecond, l.window)

			var ok bool
			require.NotPanics(t, func() {
				ok, _ = l.Allow(context.Background(), "user-1")
			})
			assert.True(t, ok)
		})
	}
}

func TestRedisLimiter_ZeroLimitDisables(t *testing.T) {
	l := NewRedisLimiter(nil, "rl:test", 0, time.Minute)
	ok, err := l.Allow(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_TEST_PASSWORD")})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	l := NewRedisLimiter(client, "rl:test:"+uuid.NewString(), 3, time.Minute)
	fixed := time.UnixMilli(1_700_000_000_000)
	l.now = func() time.Time { return fixed }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}

	ok, err := l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, ok, "other users have their own window")

	l.now = func() time.Time { return fixed.Add(time.Minute) }
	ok, err = l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts empty")
}
