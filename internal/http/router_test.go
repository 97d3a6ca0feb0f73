package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-app/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(Recoverer(testLogger(&buf)))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "Panic recovered")
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(StructuredLogger(testLogger(&buf)))
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Request completed", entry["msg"])
	assert.Equal(t, "/teapot", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	handlers.SetProductRepo(repo.NewInMemoryProductRepository())
	r := NewRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestNewRouter_RateLimited(t *testing.T) {
	handlers.SetProductRepo(repo.NewInMemoryProductRepository())
	r := NewRouter(WithRateLimiter(rl.New(0.001, 2)))

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	r := NewRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
