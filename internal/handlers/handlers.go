package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/websocket"
)

// Handler holds the store and WebSocket hub for the HTTP handlers.
type Handler struct {
	store *store.Store
	hub   *websocket.Hub
}

// NewHandler creates and returns a new Handler instance.
func NewHandler(st *store.Store, hub *websocket.Hub) *Handler {
	return &Handler{
		store: st,
		hub:   hub,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes a JSON error body, matching the {"error": ...} shape of
// the API.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
