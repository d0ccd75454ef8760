package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json and encodes the value as JSON.
// Any encoding errors are silently ignored (best-effort).
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a minimal JSON error response: {"error": "message"}.
// Typed errors go through errors.WriteHTTPError instead.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]any{"error": msg})
}

// WriteSuccess writes {"success": true, "message": msg}. An empty message is omitted.
func WriteSuccess(w http.ResponseWriter, msg string) {
	body := map[string]any{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	WriteJSON(w, http.StatusOK, body)
}
