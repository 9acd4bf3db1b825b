package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope used by the admin API. The client API keeps the
// flat shape the reporting SDKs already depend on and encodes its payloads
// directly.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteRaw encodes v as-is, for endpoints with a fixed external wire shape.
func WriteRaw(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type contextKey string

// RequestIDKey carries the per-request id through the context.
const RequestIDKey contextKey = "request_id"
