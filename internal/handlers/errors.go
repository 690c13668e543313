package handlers

import (
	"encoding/json"
	"net/http"
)

// APIError is the body of every error response.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError responds with msg; err, if non-nil, is exposed as the message detail.
func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := APIError{Error: msg}
	if err != nil {
		body.Message = err.Error()
	}
	writeJSON(w, status, body)
}

// APINotFound answers unknown routes under /api.
func APINotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "API endpoint not found", nil)
}
