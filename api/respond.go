package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/garnizeh/cpdtrack/internal/models"
)

// maxJSONBody caps every JSON request body.
const maxJSONBody = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("err", err))
	}
}

func writeMessage(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, errorResponse{Error: ve.Message, Field: ve.Field}, http.StatusUnprocessableEntity)
	case errors.Is(err, errBodyTooLarge):
		writeMessage(w, errBodyTooLarge.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, models.ErrDailyLimitExceeded):
		writeMessage(w, models.ErrDailyLimitExceeded.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrValidation):
		writeMessage(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrForbidden):
		writeMessage(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrUnauthorized):
		writeMessage(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, models.ErrConflict):
		writeMessage(w, "already exists", http.StatusConflict)
	default:
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		writeMessage(w, "internal server error", http.StatusInternalServerError)
	}
}

// readJSONBody reads at most maxJSONBody bytes of the request body.
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, models.NewValidationError("body", "unreadable request body")
	}
	return body, nil
}

// decodeJSON decodes a size-capped JSON body into v. On failure the error
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, errBodyTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return false
		}
		writeMessage(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}
