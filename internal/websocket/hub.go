package websocket

import (
	"encoding/json"
	"log"

	"github.com/parleychat/parley/internal/store"
)

// inbound pairs a raw frame with the connection it arrived on.
type inbound struct {
	client *Client
	data   []byte
}

// Hub owns the set of open connections and relays chat traffic between them.
// A single goroutine runs the event loop, so the registry is never mutated
// concurrently. Chat messages are persisted before they are broadcast; the
// broadcast carries the stored record, so a sender's echo is never emitted
// ahead of the corresponding write.
type Hub struct {
	store *store.Store

	// Registered clients.
	clients map[*Client]bool

	// Register requests from new connections.
	register chan *Client

	// Unregister requests from closing connections.
	unregister chan *Client

	// Raw frames read off the sockets.
	inbound chan inbound
}

// NewHub creates a hub backed by the given store.
func NewHub(st *store.Store) *Hub {
	return &Hub{
		store:      st,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
	}
}

// Run starts the hub event loop. It must be called exactly once, usually in
// its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("WebSocket client connected: %s", client.id)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if client.authed {
					log.Printf("WebSocket client disconnected: %s (user %d)", client.id, client.userID)
				} else {
					log.Printf("WebSocket client disconnected: %s", client.id)
				}
			}

		case in := <-h.inbound:
			h.handleFrame(in.client, in.data)
		}
	}
}

// handleFrame dispatches one inbound frame. Unknown frame types are ignored,
// matching the wire contract.
func (h *Hub) handleFrame(c *Client, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("Malformed frame from %s: %v", c.id, err)
		h.sendTo(c, newErrorFrame("Invalid message format"))
		return
	}

	switch frame.Type {
	case FrameTypeAuth:
		// An unverified claim of identity. It is used only to tag the
		// connection; no lookup, no password check, no reply.
		c.userID = frame.UserID
		c.authed = true
		log.Printf("Client %s authenticated as user %d", c.id, frame.UserID)

	case FrameTypeMessage:
		h.handleChatMessage(c, &frame)

	case FrameTypeTyping:
		// Relayed to everyone but the sending connection itself. Not
		// persisted and not rate limited; the 2s auto-clear lives in
		// the client.
		h.broadcastExcept(c, newTypingFrame(frame.UserID, frame.IsTyping))
	}
}

// handleChatMessage validates, persists, and fans out a chat message. Every
// open connection receives the stored record, including the sender and
// connections that are not a party to the conversation; filtering by
// conversation happens only in the history fetch.
func (h *Hub) handleChatMessage(c *Client, frame *inboundFrame) {
	if err := validateChatMessage(frame); err != nil {
		log.Printf("Invalid message frame from %s: %v", c.id, err)
		h.sendTo(c, newErrorFrame("Failed to save message"))
		return
	}

	msg, err := h.store.CreateMessage(frame.Content, *frame.SenderID, *frame.ReceiverID)
	if err != nil {
		log.Printf("Failed to store message from %s: %v", c.id, err)
		h.sendTo(c, newErrorFrame("Failed to save message"))
		return
	}

	h.broadcast(newMessageFrame(msg))
}

// broadcast sends a frame to every registered client.
func (h *Hub) broadcast(frame []byte) {
	for client := range h.clients {
		h.trySend(client, frame)
	}
}

// broadcastExcept sends a frame to every registered client except one.
func (h *Hub) broadcastExcept(ignore *Client, frame []byte) {
	for client := range h.clients {
		if client != ignore {
			h.trySend(client, frame)
		}
	}
}

// sendTo sends a frame to a single client.
func (h *Hub) sendTo(c *Client, frame []byte) {
	if _, ok := h.clients[c]; ok {
		h.trySend(c, frame)
	}
}

// trySend queues a frame without blocking. A client whose buffer is full is
// dropped so one stalled reader cannot hold up delivery to the rest.
func (h *Hub) trySend(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		delete(h.clients, c)
		close(c.send)
		log.Printf("Dropped slow WebSocket client: %s", c.id)
	}
}
