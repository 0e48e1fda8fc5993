// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iyunix/go-taskmate/internal/dtos"
)

// Logger is the logging interface used by the handlers
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeMessageRequired      = "MESSAGE_REQUIRED"
	CodeMessageTooLong       = "MESSAGE_TOO_LONG"
	CodeConversationNotFound = "CONVERSATION_NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
)

// maxBodyBytes bounds request bodies; messages are capped far below it.
const maxBodyBytes = 64 << 10

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, status int, detail, code string) {
	writeJSON(w, status, dtos.ErrorResponse{Detail: detail, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON", CodeInvalidRequest)
		return false
	}
	return true
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
