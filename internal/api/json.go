package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON encodes v with the uniform {"success": bool, ...} envelope
// already applied by the caller.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeOK(w http.ResponseWriter, body map[string]any) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}
