package ratelimit

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LimiterSuite struct {
	suite.Suite
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) TestMemoryLimiterEnforcesWindow() {
	ctx := context.Background()
	limiter := NewMemory(3, time.Hour)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4")
		s.Require().NoError(err)
		s.True(allowed, "request %d should be within the limit", i+1)
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *LimiterSuite) TestMemoryLimiterIsPerKey() {
	ctx := context.Background()
	limiter := NewMemory(1, time.Hour)

	allowed, _ := limiter.Allow(ctx, "a")
	s.True(allowed)
	allowed, _ = limiter.Allow(ctx, "a")
	s.False(allowed)

	allowed, _ = limiter.Allow(ctx, "b")
	s.True(allowed, "keys have independent budgets")
}

func (s *LimiterSuite) TestMemoryLimiterWindowResets() {
	ctx := context.Background()
	limiter := NewMemory(1, 10*time.Millisecond)

	allowed, _ := limiter.Allow(ctx, "a")
	s.True(allowed)
	allowed, _ = limiter.Allow(ctx, "a")
	s.False(allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, "a")
	s.True(allowed, "a fresh window grants a fresh budget")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, context.DeadlineExceeded
}

func (s *LimiterSuite) TestMiddleware() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.Run("rejects over-limit requests", func() {
		h := Middleware(NewMemory(1, time.Hour), logger)(ok)

		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
		s.Equal(http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
		s.Equal(http.StatusTooManyRequests, second.Code)
	})

	s.Run("fails open on limiter errors", func() {
		h := Middleware(failingLimiter{}, logger)(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		s.Equal(http.StatusOK, rec.Code)
	})
}
