package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func newTestServer() (*chi.Mux, *InMemoryStore) {
	store := NewInMemoryStore()
	return newRouterFor(store), store
}

func newRouterFor(store Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	RegisterRoutes(r, store, nil)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestPostTasks_Success(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodPost, "/tasks/", `{"title":"learn chi"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	got := decode[Task](t, rec)
	if got.ID == 0 {
		t.Errorf("expected non-zero ID")
	}
	if got.Title != "learn chi" {
		t.Errorf("expected Title=learn chi, got %q", got.Title)
	}
}

func TestPostTasks_IgnoresClientID(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodPost, "/tasks", `{"id":42,"title":"mine"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if got := decode[Task](t, rec); got.ID != 1 {
		t.Errorf("expected store-generated id 1, got %d", got.ID)
	}
}

func TestPostTasks_TitleRequired(t *testing.T) {
	r, _ := newTestServer()

	for _, body := range []string{`{"title":""}`, `{"title":"   "}`, `{}`} {
		rec := do(t, r, http.MethodPost, "/tasks/", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: expected status 422, got %d, body=%s", body, rec.Code, rec.Body.String())
		}
		errResp := decode[errResponse](t, rec)
		if errResp.Error != "validation_error" {
			t.Errorf("expected error 'validation_error', got %q", errResp.Error)
		}
		if len(errResp.Details) != 1 || errResp.Details[0].Field != "title" {
			t.Errorf("expected a title field error, got %+v", errResp.Details)
		}
	}
}

func TestPostTasks_InvalidJSON(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodPost, "/tasks/", `{"title":`) // truncated/invalid JSON
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if errResp := decode[errResponse](t, rec); errResp.Error != "invalid_json" {
		t.Errorf("expected error 'invalid_json', got %q", errResp.Error)
	}
}

func TestGetTasks_HappyPath(t *testing.T) {
	r, store := newTestServer()

	seed := Task{Title: "seeded task"}
	commit(t, store, func(s Session) error { return s.InsertTask(context.Background(), &seed) })

	rec := do(t, r, http.MethodGet, "/tasks/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", rec.Code, rec.Body.String())
	}

	list := decode[[]Task](t, rec)
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	if list[0].Title != "seeded task" {
		t.Errorf("expected first task title 'seeded task', got %q", list[0].Title)
	}
}

func TestGetTasks_EmptyIsArray(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodGet, "/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetTask_CreateThenFetch(t *testing.T) {
	r, _ := newTestServer()

	created := decode[Task](t, do(t, r, http.MethodPost, "/tasks/", `{"title":"same"}`))

	rec := do(t, r, http.MethodGet, "/tasks/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := decode[Task](t, rec); got != created {
		t.Errorf("fetched %+v, created %+v", got, created)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodGet, "/tasks/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	errResp := decode[errResponse](t, rec)
	if errResp.Error != "not_found" || errResp.Message != "Task not found" {
		t.Errorf("unexpected error body: %+v", errResp)
	}
}

func TestGetTask_NonIntegerID(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodGet, "/tasks/abc", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestPutTask_TitleSemantics(t *testing.T) {
	r, _ := newTestServer()
	do(t, r, http.MethodPost, "/tasks/", `{"title":"original"}`)

	cases := []struct {
		body string
		want string
	}{
		{`{}`, "original"},
		{`{"title":""}`, "original"},
		{`{"title":null}`, "original"},
		{`{"title":"changed"}`, "changed"},
	}
	for _, tc := range cases {
		rec := do(t, r, http.MethodPut, "/tasks/1", tc.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("body %s: expected status 200, got %d", tc.body, rec.Code)
		}
		got := decode[Task](t, rec)
		if got.ID != 1 || got.Title != tc.want {
			t.Errorf("body %s: got %+v, want title %q", tc.body, got, tc.want)
		}

		stored := decode[Task](t, do(t, r, http.MethodGet, "/tasks/1", ""))
		if stored.Title != tc.want {
			t.Errorf("body %s: stored title %q, want %q", tc.body, stored.Title, tc.want)
		}
	}
}

func TestPutTask_NotFound(t *testing.T) {
	r, _ := newTestServer()

	rec := do(t, r, http.MethodPut, "/tasks/7", `{"title":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	r, _ := newTestServer()
	do(t, r, http.MethodPost, "/tasks/", `{"title":"doomed"}`)

	rec := do(t, r, http.MethodDelete, "/tasks/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}

	if rec := do(t, r, http.MethodGet, "/tasks/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodDelete, "/tasks/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", rec.Code)
	}
}

// failingStore fails every Begin so handlers hit the store-failure path.
type failingStore struct{ InMemoryStore }

func (f *failingStore) Begin(context.Context) (Session, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailure_Returns500(t *testing.T) {
	r := newRouterFor(&failingStore{})

	rec := do(t, r, http.MethodGet, "/tasks/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if errResp := decode[errResponse](t, rec); errResp.Error != "unexpected_error" {
		t.Errorf("expected 'unexpected_error', got %q", errResp.Error)
	}
}
