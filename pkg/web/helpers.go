// Package web holds the HTTP helpers shared by the REST handlers: JSON responses,
// path and query parameter coercion, and middleware.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, ErrorResponse{Message: message})
}
