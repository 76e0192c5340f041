// Package handlers provides the uniform JSON response envelope shared by all endpoints.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the response body for every API call.
// Successful responses carry Data and an optional Message; failures carry Error.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes a successful envelope wrapping data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// RespondMessage writes a successful envelope with data and a human-readable message.
func RespondMessage(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Envelope{Success: true, Data: data, Message: message})
}

// RespondError logs err and writes a failure envelope.
// Internal server errors are reported with the status text rather than the error detail.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		logger.Error("handler error", "error", err, "status", status)
		msg = http.StatusText(status)
	case status > http.StatusInternalServerError:
		logger.Error("handler error", "error", err, "status", status)
	default:
		logger.Warn("request rejected", "error", err, "status", status)
	}

	write(w, status, Envelope{Success: false, Error: msg})
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
