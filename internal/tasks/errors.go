package tasks

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// NotFoundError reports that the addressed entity does not exist. Kind is
// "Task" or "Comment".
type NotFoundError struct {
	Kind string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// notFound converts a store ErrNotFound into a NotFoundError for kind and
// passes every other error through.
func notFound(err error, kind string) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{Kind: kind}
	}
	return err
}

// writeError maps err to a response. Anything that is not a NotFoundError
// is a store failure: it is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errResponse{Error: "not_found", Message: nf.Error()})
		return
	}

	logger.Error("store_error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("req_id", chimw.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
}

func writeValidation(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, errResponse{
		Error:   "validation_error",
		Details: errs,
	})
}
