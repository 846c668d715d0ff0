package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/parleychat/parley/internal/store"
)

// GetMessagesHandler returns the full history between two users, sorted
// ascending by timestamp. The pair is symmetric, so the order of the two
// path IDs does not matter.
func (h *Handler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID1, err1 := strconv.Atoi(r.PathValue("id1"))
	userID2, err2 := strconv.Atoi(r.PathValue("id2"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "Invalid user IDs")
		return
	}

	messages, err := h.store.GetMessages(userID1, userID2)
	if err != nil {
		log.Printf("Failed to get messages between %d and %d: %v", userID1, userID2, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// MarkMessageReadHandler flips the read flag on a single message. Clients
// call this when a conversation is opened; the live channel never does.
func (h *Handler) MarkMessageReadHandler(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := h.store.MarkMessageAsRead(messageID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Message not found")
			return
		}
		log.Printf("Failed to mark message %d as read: %v", messageID, err)
		writeError(w, http.StatusInternalServerError, "Failed to mark message as read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
