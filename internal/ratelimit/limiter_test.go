package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterSharedCeiling(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCounter(3, time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.Allow(ctx, "k"+string(rune('a'+i)))
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := c.Allow(ctx, "other")
	assert.False(t, ok, "counter is shared across keys")

	now = now.Add(time.Minute)
	ok, _ = c.Allow(ctx, "k")
	assert.True(t, ok, "new window")

	c.Reset()
	ok, _ = c.Allow(ctx, "k")
	assert.True(t, ok)
}

func newSliding(t *testing.T, ceiling int) (*SlidingWindow, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSlidingWindow(client, ceiling, time.Minute), mr
}

func TestSlidingWindowPerKey(t *testing.T) {
	s, _ := newSliding(t, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		now = now.Add(time.Second)
		ok, err := s.Allow(ctx, "1.2.3.4:u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := s.Allow(ctx, "1.2.3.4:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Allow(ctx, "1.2.3.4:u2")
	require.NoError(t, err)
	assert.True(t, ok, "other key has its own window")

	now = now.Add(time.Minute)
	ok, err = s.Allow(ctx, "1.2.3.4:u1")
	require.NoError(t, err)
	assert.True(t, ok, "old entries slide out")
}

func TestSlidingWindowRedisDown(t *testing.T) {
	s, mr := newSliding(t, 2)
	mr.Close()
	_, err := s.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/questions", Middleware(NewCounter(1, time.Minute), nil), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}
