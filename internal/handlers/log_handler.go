package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iyunix/go-kbshell/internal/logging"
)

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`             // e.g., "info", "error", "warn"
	Message string `json:"message"`           // The main log message
	Context any    `json:"context,omitempty"` // Optional extra data (e.g., stack trace)
}

// LogFrontendEvent forwards browser log lines into the server log.
func LogFrontendEvent(logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload FrontendLogPayload
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		kv := []interface{}{"source", "client", "message", payload.Message, "context", payload.Context}
		switch payload.Level {
		case "error":
			logger.Error("CLIENT_LOG", kv...)
		case "warn":
			logger.Warn("CLIENT_LOG", kv...)
		case "debug":
			logger.Debug("CLIENT_LOG", kv...)
		default:
			logger.Info("CLIENT_LOG", kv...)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
