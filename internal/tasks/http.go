package tasks

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the task and comment endpoints on r. Paths are
// declared without trailing slashes; the server strips them from requests.
func RegisterRoutes(r chi.Router, store Store, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", createTask(store, logger))
		r.Get("/", listTasks(store, logger))

		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", getTask(store, logger))
			r.Put("/", updateTask(store, logger))
			r.Delete("/", deleteTask(store, logger))

			r.Get("/comments", listComments(store, logger))
			r.Post("/comments", createComment(store, logger))
		})
	})

	r.Route("/comments/{commentID}", func(r chi.Router) {
		r.Get("/", getComment(store, logger))
		r.Put("/", updateComment(store, logger))
		r.Delete("/", deleteComment(store, logger))
	})
}

func createTask(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req createTaskRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if vErrs := validateCreateTask(req); len(vErrs) > 0 {
			writeValidation(w, vErrs)
			return
		}

		t := Task{Title: *req.Title}
		err := withSession(r.Context(), store, func(s Session) error {
			return s.InsertTask(r.Context(), &t)
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, newTaskResponse(t))
	}
}

func listTasks(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var list []Task
		err := withSession(r.Context(), store, func(s Session) error {
			var err error
			list, err = s.ListTasks(r.Context())
			return err
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		out := make([]taskResponse, 0, len(list))
		for _, t := range list {
			out = append(out, newTaskResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getTask(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := pathID(w, r, "taskID", "task_id")
		if !ok {
			return
		}

		var t Task
		err := withSession(r.Context(), store, func(s Session) error {
			var err error
			t, err = s.GetTask(r.Context(), id)
			return notFound(err, "Task")
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, newTaskResponse(t))
	}
}

func updateTask(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := pathID(w, r, "taskID", "task_id")
		if !ok {
			return
		}
		var req updateTaskRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var t Task
		err := withSession(r.Context(), store, func(s Session) error {
			var err error
			if t, err = s.GetTask(r.Context(), id); err != nil {
				return notFound(err, "Task")
			}
			req.apply(&t)
			return notFound(s.UpdateTask(r.Context(), t), "Task")
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, newTaskResponse(t))
	}
}

// deleteTask removes only the task row. Its comments stay behind and are
// still reachable through /comments/{id}.
func deleteTask(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "taskID", "task_id")
		if !ok {
			return
		}

		err := withSession(r.Context(), store, func(s Session) error {
			if _, err := s.GetTask(r.Context(), id); err != nil {
				return notFound(err, "Task")
			}
			return notFound(s.DeleteTask(r.Context(), id), "Task")
		})
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, r, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func validateCreateTask(req createTaskRequest) []fieldError {
	var errs []fieldError

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, fieldError{
			Field:   "title",
			Message: "title is required",
		})
	}

	return errs
}

// pathID parses the chi URL parameter param as an integer id. On failure it
// writes a 422 naming field and returns false.
func pathID(w http.ResponseWriter, r *http.Request, param, field string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeValidation(w, []fieldError{{Field: field, Message: "must be an integer"}})
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
