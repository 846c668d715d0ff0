package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/parleychat/parley/internal/models"
)

// apiClient wraps the server's HTTP surface: the user list, the history
// fetch, and read receipts.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(serverURL string) *apiClient {
	return &apiClient{
		http: resty.New().SetBaseURL(serverURL),
	}
}

// FetchUsers returns every registered user, passwords included. Login is a
// client-side compare against this list.
func (a *apiClient) FetchUsers() ([]models.User, error) {
	var users []models.User
	resp, err := a.http.R().SetResult(&users).Get("/api/users")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch users: %s", resp.Status())
	}
	return users, nil
}

// FetchMessages returns the history between two users in ascending
// timestamp order.
func (a *apiClient) FetchMessages(userID1, userID2 int) ([]models.Message, error) {
	var messages []models.Message
	resp, err := a.http.R().
		SetResult(&messages).
		Get(fmt.Sprintf("/api/messages/%d/%d", userID1, userID2))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch messages: %s", resp.Status())
	}
	return messages, nil
}

// MarkMessageRead flags one message as read.
func (a *apiClient) MarkMessageRead(messageID int) error {
	resp, err := a.http.R().Post(fmt.Sprintf("/api/messages/%d/read", messageID))
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to mark message read: %s", resp.Status())
	}
	return nil
}
