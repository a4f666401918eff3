package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/validation"
)

const (
	msgInternal     = "Internal server error"
	msgBodyTooLarge = "request body too large"

	maxJSONBodyBytes = 1 << 20
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError renders err by its kind. Unclassified errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}

	writeMessage(w, status, apperr.MessageOf(err, msgInternal))
}

// payload decodes the JSON request body, reading at most maxJSONBodyBytes.
// Malformed and oversized bodies are validation errors.
func payload(w http.ResponseWriter, r *http.Request) (validation.Payload, error) {
	p, err := validation.ParsePayload(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Wrap(apperr.KindValidation, msgBodyTooLarge, err)
		}
		return nil, apperr.Wrap(apperr.KindValidation, validation.ErrNotObject.Error(), err)
	}
	return p, nil
}

// invalid classifies a validator error.
func invalid(err error) error {
	return apperr.Wrap(apperr.KindValidation, err.Error(), err)
}

// NotFound answers every unmatched route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found")
}
