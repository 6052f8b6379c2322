package server

import (
	"encoding/json"
	"net/http"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Envelope{Success: false, Message: message})
}

func writeOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Message: message})
}
