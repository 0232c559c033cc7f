package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps a service error to a status code. Unknown errors are logged
// and reported as internal errors without detail.
func writeError(w http.ResponseWriter, op string, err error) {
	var scanErr *apperr.ScanError
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("note already exists"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.As(err, &scanErr):
		slog.Error(op+" failed", slog.String("path", scanErr.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("cannot read note "+scanErr.Path))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// writeIndexError is writeError for operations that read the stored index.
func writeIndexError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("index not built"))
	case errors.Is(err, apperr.ErrMalformedIndex):
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("index is malformed"))
	default:
		writeError(w, op, err)
	}
}
