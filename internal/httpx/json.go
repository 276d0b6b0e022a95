package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes sent to sync clients alongside the human-readable message.
const (
	CodeUnauthorized         = "unauthorized"
	CodeBadRequest           = "bad_request"
	CodeStorageNotConfigured = "storage_not_configured"
	CodeInternal             = "internal"
)

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
