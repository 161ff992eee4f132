// internal/server/handlers/respond.go

package handlers

import (
	"net/http"

	"github.com/goccy/go-json"

	"livejourney/internal/logging"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		logging.Error().Err(err).Int("code", code).Msg(message)
	}

	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// Helper for error responses carrying structured details
func respondWithDetails(w http.ResponseWriter, code int, message string, details interface{}) {
	respondWithJSON(w, code, ErrorResponse{Error: message, Details: details})
}
