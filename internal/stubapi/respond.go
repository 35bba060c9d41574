package stubapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	respondJSON(w, logger, status, ErrorResponse{Message: message})
}

// respondValidation returns the field->messages map shape the real API uses
// for rejected request bodies.
func respondValidation(w http.ResponseWriter, logger *zap.Logger, errs map[string][]string) {
	respondJSON(w, logger, http.StatusUnprocessableEntity, ErrorResponse{
		Message: "validation failed",
		Errors:  errs,
	})
}
