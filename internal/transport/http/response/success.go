package response

import (
	"encoding/json"
	"net/http"
)

// StatusBody is the acknowledgement shape the provider's webhook caller expects.
type StatusBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
// It sets Content-Type to application/json; charset=utf-8 if not already set.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status writes {"status": s}.
func Status(w http.ResponseWriter, code int, s string) {
	WriteJSON(w, code, StatusBody{Status: s})
}
