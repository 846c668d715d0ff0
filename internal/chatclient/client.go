// Package chatclient maintains a single logical connection to the chat
// server. The connection is re-dialed forever on a fixed delay; there is no
// backoff growth and no retry cap.
package chatclient

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parleychat/parley/internal/models"
)

// State is the connection state of the client.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
)

// DefaultReconnectDelay is the fixed wait between connection attempts.
const DefaultReconnectDelay = 3 * time.Second

// Config configures a Client.
type Config struct {
	// URL is the WebSocket endpoint, e.g. ws://localhost:8080/ws.
	URL string

	// AuthUserID is the identity claimed immediately after every open.
	// It is not tied to whoever is logged in; the handshake always sends
	// this configured value.
	AuthUserID int

	// ReconnectDelay overrides DefaultReconnectDelay when positive.
	ReconnectDelay time.Duration
}

// Handlers receives events from the connection. Nil callbacks are skipped.
// Callbacks run on the client's read goroutine.
type Handlers struct {
	OnMessage     func(msg models.Message)
	OnTyping      func(userID int, isTyping bool)
	OnError       func(message string)
	OnStateChange func(state State)
}

// Client is a reconnecting WebSocket chat client.
type Client struct {
	cfg      Config
	handlers Handlers

	mu    sync.Mutex
	conn  *websocket.Conn
	state State

	// Serializes writes to the connection.
	wmu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a client. Call Run to start connecting.
func New(cfg Config, handlers Handlers) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Client{
		cfg:      cfg,
		handlers: handlers,
		state:    StateDisconnected,
		done:     make(chan struct{}),
	}
}

// serverFrame is the superset of fields the server may send.
type serverFrame struct {
	Type     string          `json:"type"`
	Data     *models.Message `json:"data"`
	UserID   int             `json:"userId"`
	IsTyping bool            `json:"isTyping"`
	Message  string          `json:"message"`
}

type authFrame struct {
	Type   string `json:"type"`
	UserID int    `json:"userId"`
}

type messageFrame struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	SenderID   int    `json:"senderId"`
	ReceiverID int    `json:"receiverId"`
}

type typingFrame struct {
	Type     string `json:"type"`
	UserID   int    `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// Run drives the connect/read/reconnect loop until Close is called. It
// blocks, so it is usually started in its own goroutine.
func (c *Client) Run() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.setState(StateConnecting)
		conn, _, err := websocket.DefaultDialer.Dial(c.cfg.URL, nil)
		if err != nil {
			log.Printf("chat connect failed: %v", err)
			c.setState(StateDisconnected)
			if !c.waitRetry() {
				return
			}
			continue
		}

		c.mu.Lock()
		select {
		case <-c.done:
			// Closed while dialing; the connection was never published,
			// so Close could not reach it.
			c.mu.Unlock()
			conn.Close()
			return
		default:
		}
		c.conn = conn
		c.state = StateOpen
		c.mu.Unlock()
		c.notifyState(StateOpen)

		// Claim an identity right away. The server records it without
		// verification and never replies.
		c.writeJSON(authFrame{Type: "auth", UserID: c.cfg.AuthUserID})

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.state = StateDisconnected
		c.mu.Unlock()
		c.notifyState(StateDisconnected)

		if !c.waitRetry() {
			return
		}
	}
}

// Close stops the reconnect loop and closes any open connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SendMessage sends a chat message. It is silently dropped when the
// connection is not open.
func (c *Client) SendMessage(content string, senderID, receiverID int) {
	if c.State() != StateOpen {
		return
	}
	c.writeJSON(messageFrame{
		Type:       "message",
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
	})
}

// SendTyping sends a typing-state change. It is silently dropped when the
// connection is not open.
func (c *Client) SendTyping(userID int, isTyping bool) {
	if c.State() != StateOpen {
		return
	}
	c.writeJSON(typingFrame{Type: "typing", UserID: userID, IsTyping: isTyping})
}

// readLoop reads frames until the connection fails. Any read error,
// including a clean close, ends the loop; the caller treats all of them as
// "disconnected".
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var frame serverFrame
		if err := conn.ReadJSON(&frame); err != nil {
			conn.Close()
			return
		}

		switch frame.Type {
		case "message":
			if frame.Data != nil && c.handlers.OnMessage != nil {
				c.handlers.OnMessage(*frame.Data)
			}
		case "typing":
			if c.handlers.OnTyping != nil {
				c.handlers.OnTyping(frame.UserID, frame.IsTyping)
			}
		case "error":
			if c.handlers.OnError != nil {
				c.handlers.OnError(frame.Message)
			}
		}
	}
}

// waitRetry sleeps for the reconnect delay. It returns false when the client
// was closed while waiting.
func (c *Client) waitRetry() bool {
	select {
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) writeJSON(v any) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		// The read loop will observe the failure and reconnect.
		conn.Close()
	}
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.notifyState(state)
}

func (c *Client) notifyState(state State) {
	if c.handlers.OnStateChange != nil {
		c.handlers.OnStateChange(state)
	}
}
