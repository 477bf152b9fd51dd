package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serveFrom(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyClientID, "c1"))

	extractor := httpx.CompositeKeyExtractor(":", httpx.ClientIDKeyExtractor, httpx.IPKeyExtractor)
	require.Equal(t, "c1:192.168.1.1", extractor(req))

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	anon.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", extractor(anon))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3})(okHandler)

		for i := range 3 {
			require.Equal(t, http.StatusOK, serveFrom(h, "192.168.1.1:12345").Code, "request %d", i+1)
		}

		rec := serveFrom(h, "192.168.1.1:12345")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)

		require.Equal(t, http.StatusOK, serveFrom(h, "192.168.1.1:12345").Code)
		require.Equal(t, http.StatusTooManyRequests, serveFrom(h, "192.168.1.1:12345").Code)
		require.Equal(t, http.StatusOK, serveFrom(h, "192.168.1.2:12345").Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serveFrom(h, "192.168.1.1:12345").Code)
		}
	})
}

func TestDefaultRateLimits(t *testing.T) {
	d := httpx.DefaultRateLimits()
	for name, cfg := range map[string]httpx.RateLimitConfig{"strict": d.Strict, "moderate": d.Moderate, "public": d.Public} {
		require.Positive(t, cfg.RequestsPerWindow, name)
		require.Positive(t, cfg.Window, name)
		require.Positive(t, cfg.Burst, name)
	}
	require.Less(t, d.Strict.RequestsPerWindow, d.Moderate.RequestsPerWindow)
	require.Less(t, d.Moderate.RequestsPerWindow, d.Public.RequestsPerWindow)
}

func TestLoadRateLimits(t *testing.T) {
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "1000")
	t.Setenv("RATELIMIT_STRICT_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_STRICT_BURST", "nope")
	t.Setenv("RATELIMIT_PUBLIC_BURST", "-5")

	limits := httpx.LoadRateLimits()
	d := httpx.DefaultRateLimits()

	require.Equal(t, 1000, limits.Strict.RequestsPerWindow)
	require.Equal(t, 10*time.Second, limits.Strict.Window)
	require.Equal(t, d.Strict.Burst, limits.Strict.Burst)
	require.Equal(t, d.Public, limits.Public)
	require.Equal(t, d.Moderate, limits.Moderate)
}
