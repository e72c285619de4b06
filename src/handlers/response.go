package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/processors"
	"github.com/username/extractos/backend/src/security/validation"
	"github.com/username/extractos/backend/src/services"
)

type contextKey string

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("Error encoding JSON response", "path", r.URL.Path, "error", err)
	}
}

// batchErrorResponse is the 422 body for a rejected statement.
type batchErrorResponse struct {
	Error    string            `json:"error"`
	Kind     string            `json:"kind"`
	Expected models.Currency   `json:"expected,omitempty"`
	Detected []models.Currency `json:"detected,omitempty"`
}

// sendServiceError maps service and validation errors to HTTP responses.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var batchErr *processors.BatchError
	switch {
	case errors.As(err, &batchErr):
		logger.FromContext(r.Context()).Warn("Statement rejected", "kind", batchErr.Kind, "error", err)
		writeJSON(w, r, http.StatusUnprocessableEntity, batchErrorResponse{
			Error:    batchErr.Error(),
			Kind:     string(batchErr.Kind),
			Expected: batchErr.Expected,
			Detected: batchErr.Detected,
		})
	case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, services.ErrEmailNotFound):
		sendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, validation.ErrValidationFailed), errors.Is(err, services.ErrParsingFailed):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
