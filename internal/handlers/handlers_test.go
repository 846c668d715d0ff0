package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/websocket"
)

func setupServer(t *testing.T) (*store.Store, *httptest.Server) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	st := store.New(db)
	require.NoError(t, st.Migrate())

	hub := websocket.NewHub(st)
	go hub.Run()

	mux := http.NewServeMux()
	NewHandler(st, hub).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return st, srv
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestGetUsers(t *testing.T) {
	req := require.New(t)
	st, srv := setupServer(t)

	req.NoError(st.CreateUser(&models.User{Username: "alice", Password: "password1"}))
	req.NoError(st.CreateUser(&models.User{Username: "bob", Password: "password2"}))

	var users []models.User
	resp := getJSON(t, srv.URL+"/api/users", &users)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(users, 2)
	req.Equal("alice", users[0].Username)

	// The login compare happens client-side, so the password comes back.
	req.Equal("password1", users[0].Password)
}

func TestGetMessages(t *testing.T) {
	req := require.New(t)
	st, srv := setupServer(t)

	for _, content := range []string{"one", "two", "three"} {
		_, err := st.CreateMessage(content, 1, 2)
		req.NoError(err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := st.CreateMessage("other pair", 1, 3)
	req.NoError(err)

	var forward []models.Message
	resp := getJSON(t, srv.URL+"/api/messages/1/2", &forward)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(forward, 3)
	req.Equal("one", forward[0].Content)
	req.Equal("three", forward[2].Content)

	// Both directions return the same history.
	var backward []models.Message
	getJSON(t, srv.URL+"/api/messages/2/1", &backward)
	req.Equal(forward, backward)
}

func TestGetMessages_InvalidIDs(t *testing.T) {
	_, srv := setupServer(t)

	resp := getJSON(t, srv.URL+"/api/messages/abc/2", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/messages/1/xyz", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMarkMessageRead(t *testing.T) {
	req := require.New(t)
	st, srv := setupServer(t)

	msg, err := st.CreateMessage("hello", 1, 2)
	req.NoError(err)
	req.False(msg.Read)

	resp, err := http.Post(srv.URL+"/api/messages/"+strconv.Itoa(msg.ID)+"/read", "application/json", nil)
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusNoContent, resp.StatusCode)

	msgs, err := st.GetMessages(1, 2)
	req.NoError(err)
	req.True(msgs[0].Read)
}

func TestMarkMessageRead_NotFound(t *testing.T) {
	req := require.New(t)
	_, srv := setupServer(t)

	resp, err := http.Post(srv.URL+"/api/messages/9999/read", "application/json", nil)
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)
}
