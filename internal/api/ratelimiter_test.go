package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestClientLimiterUsesDefaults(t *testing.T) {
	limiter := newClientLimiter(0, 0)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first request to be allowed")
	}
}

func TestClientLimiterIsPerClient(t *testing.T) {
	limiter := newClientLimiter(1, 1)

	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first request from client A to pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected second request from client A to be limited")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected client B to have its own bucket")
	}
}

func TestClientLimiterSweepsIdleClients(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := newClientLimiter(10, 10)
	limiter.now = func() time.Time { return now }

	for i := 0; i < limiterSweepAbove; i++ {
		limiter.Allow(time.Duration(i).String())
	}
	if limiter.size() != limiterSweepAbove {
		t.Fatalf("expected %d buckets, got %d", limiterSweepAbove, limiter.size())
	}

	now = now.Add(limiterIdleTTL + time.Second)
	limiter.Allow("fresh")
	if limiter.size() != 1 {
		t.Fatalf("expected idle buckets to be swept, got %d", limiter.size())
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	if got := clientKey(req); got != "192.0.2.7" {
		t.Fatalf("expected host part, got %q", got)
	}

	req.RemoteAddr = "pipe"
	if got := clientKey(req); got != "pipe" {
		t.Fatalf("expected raw address fallback, got %q", got)
	}
}
