package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeSuccess writes {success: true, message, ...payload}.
func writeSuccess(w http.ResponseWriter, status int, msg string, payload map[string]any) {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	body["message"] = msg
	writeJSON(w, status, body)
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeFailure writes {success: false, message}.
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
