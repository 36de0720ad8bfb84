package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"pizza-hq/pizzeria/pkg/api/middleware"
	"pizza-hq/pizzeria/pkg/store"
)

// StatusError is an error with the HTTP status it should be reported as.
// Its message is returned to the client.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func statusError(code int, msg string) *StatusError {
	return &StatusError{Code: code, Message: msg}
}

// writeError reports err as {"message": ...}. Errors that are not a
// StatusError or a known store condition are logged and answered with a
// generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		middleware.WriteMessage(w, se.Code, se.Message)
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		middleware.WriteMessage(w, http.StatusConflict, "already exists")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.WriteMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body of at most 1MB into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return statusError(http.StatusBadRequest, "invalid JSON body")
	}
	return nil
}
