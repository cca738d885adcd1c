package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	appmw "github.com/s1natex/tasks-comments-api/internal/middleware"
)

func TestRateLimit_RejectsOnceBucketIsEmpty(t *testing.T) {
	r := chi.NewRouter()
	r.Use(appmw.RateLimitMiddleware(rate.NewLimiter(rate.Every(10*time.Second), 1)))
	r.Get("/tasks", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "10" {
		t.Errorf("Retry-After = %q, want 10", got)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "too_many_requests" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	h := appmw.RateLimitMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: got %d", i, rec.Code)
		}
	}
}

func TestNewLimiter(t *testing.T) {
	if appmw.NewLimiter(0, 5) != nil {
		t.Errorf("expected nil limiter for rps <= 0")
	}
	l := appmw.NewLimiter(10, 0)
	if l == nil || l.Burst() != 1 {
		t.Fatalf("expected burst clamped to 1, got %+v", l)
	}
}
