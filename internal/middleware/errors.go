package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the same {"error":{"code","message"}} envelope the
// handlers use, so clients see one error shape regardless of which layer
// rejected the request.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
