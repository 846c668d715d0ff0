package handlers

import (
	"net/http"

	"github.com/parleychat/parley/internal/websocket"
)

// WebSocketHandler upgrades the request and hands the connection to the hub.
// No identity is known at upgrade time; the client claims one afterwards
// with an auth frame.
func (h *Handler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(h.hub, w, r)
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.GetUsersHandler)
	mux.HandleFunc("GET /api/messages/{id1}/{id2}", h.GetMessagesHandler)
	mux.HandleFunc("POST /api/messages/{id}/read", h.MarkMessageReadHandler)
	mux.HandleFunc("GET /ws", h.WebSocketHandler)
}
