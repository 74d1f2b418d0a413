package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cache"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

func countingHandler(calls *atomic.Int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func TestCacheMiddleware(t *testing.T) {
	store := cache.NewMemoryAdapter()
	var calls atomic.Int32
	h := NewCacheMiddleware(store, nil).Middleware(countingHandler(&calls, http.StatusOK))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/hospitals?page=1&q=heart", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/hospitals?q=heart&page=1", nil))

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"ok":true}`, second.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	// Dropping the route prefix empties the cache for it.
	require.NoError(t, store.DeletePattern(t.Context(), providers.HTTPCachePattern("/api/hospitals")))
	third := httptest.NewRecorder()
	h.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/api/hospitals?page=1&q=heart", nil))
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
}

func TestCacheMiddleware_SkipsUncachable(t *testing.T) {
	store := cache.NewMemoryAdapter()
	var calls atomic.Int32
	h := NewCacheMiddleware(store, nil).Middleware(countingHandler(&calls, http.StatusOK))
	failing := NewCacheMiddleware(store, nil).Middleware(countingHandler(&calls, http.StatusBadGateway))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/leads", nil))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/albums", nil))
	}

	assert.Equal(t, int32(6), calls.Load())
}

func TestCacheMiddleware_PrefixRoutes(t *testing.T) {
	m := NewCacheMiddleware(nil, nil)

	assert.True(t, m.getRouteConfig("/api/blogs/heart-surgery").Enabled)
	assert.True(t, m.getRouteConfig("/api/blogs").Enabled)
	assert.False(t, m.getRouteConfig("/api/hospitals/extra").Enabled)
}

func TestCORS(t *testing.T) {
	var calls atomic.Int32
	h := CORS([]string{"https://medtravel.example", " "})(countingHandler(&calls, http.StatusOK))

	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "https://medtravel.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://medtravel.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, calls.Load())

	req = httptest.NewRequest(http.MethodGet, "/api/hospitals", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestETag_NotModified(t *testing.T) {
	var calls atomic.Int32
	h := ETag(countingHandler(&calls, http.StatusOK))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/albums", nil))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/albums", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var calls atomic.Int32
	h := LoggingMiddleware(countingHandler(&calls, http.StatusCreated))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/leads", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
