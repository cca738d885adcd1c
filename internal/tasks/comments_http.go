package tasks

import (
	"log/slog"
	"net/http"
)

func listComments(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		taskID, ok := pathID(w, r, "taskID", "task_id")
		if !ok {
			return
		}
		if taskID <= 0 {
			writeValidation(w, []fieldError{{Field: "task_id", Message: "must be greater than 0"}})
			return
		}

		var list []Comment
		err := withSession(r.Context(), store, func(s Session) error {
			if _, err := s.GetTask(r.Context(), taskID); err != nil {
				return notFound(err, "Task")
			}
			var err error
			list, err = s.ListCommentsByTask(r.Context(), taskID)
			return err
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		out := make([]commentResponse, 0, len(list))
		for _, c := range list {
			out = append(out, newCommentResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createComment attaches a comment to the task in the path. A task_id in
// the body is ignored.
func createComment(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		taskID, ok := pathID(w, r, "taskID", "task_id")
		if !ok {
			return
		}
		var req createCommentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if vErrs := validateCreateComment(req); len(vErrs) > 0 {
			writeValidation(w, vErrs)
			return
		}

		c := Comment{TaskID: taskID, Author: *req.Author, Content: *req.Content}
		err := withSession(r.Context(), store, func(s Session) error {
			if _, err := s.GetTask(r.Context(), taskID); err != nil {
				return notFound(err, "Task")
			}
			return s.InsertComment(r.Context(), &c)
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, newCommentResponse(c))
	}
}

func getComment(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := pathID(w, r, "commentID", "comment_id")
		if !ok {
			return
		}

		var c Comment
		err := withSession(r.Context(), store, func(s Session) error {
			var err error
			c, err = s.GetComment(r.Context(), id)
			return notFound(err, "Comment")
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, newCommentResponse(c))
	}
}

func updateComment(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := pathID(w, r, "commentID", "comment_id")
		if !ok {
			return
		}
		var req updateCommentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var c Comment
		err := withSession(r.Context(), store, func(s Session) error {
			var err error
			if c, err = s.GetComment(r.Context(), id); err != nil {
				return notFound(err, "Comment")
			}
			req.apply(&c)
			return notFound(s.UpdateComment(r.Context(), c), "Comment")
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, newCommentResponse(c))
	}
}

func deleteComment(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "commentID", "comment_id")
		if !ok {
			return
		}

		err := withSession(r.Context(), store, func(s Session) error {
			if _, err := s.GetComment(r.Context(), id); err != nil {
				return notFound(err, "Comment")
			}
			return notFound(s.DeleteComment(r.Context(), id), "Comment")
		})
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, r, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func validateCreateComment(req createCommentRequest) []fieldError {
	var errs []fieldError
	if req.Author == nil {
		errs = append(errs, fieldError{Field: "author", Message: "author is required"})
	}
	if req.Content == nil {
		errs = append(errs, fieldError{Field: "content", Message: "content is required"})
	}
	return errs
}
