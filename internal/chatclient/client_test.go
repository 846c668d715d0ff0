package chatclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/models"
)

// fakeServer accepts WebSocket connections and records every inbound frame.
type fakeServer struct {
	srv    *httptest.Server
	frames chan map[string]any
	conns  chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{
		frames: make(chan map[string]any, 64),
		conns:  make(chan *websocket.Conn, 8),
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			fs.frames <- frame
		}
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http")
}

func (fs *fakeServer) nextFrame(t *testing.T) map[string]any {
	t.Helper()
	select {
	case frame := <-fs.frames:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func (fs *fakeServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-fs.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a connection")
		return nil
	}
}

func startClient(t *testing.T, cfg Config, handlers Handlers) *Client {
	t.Helper()
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = 50 * time.Millisecond
	}
	c := New(cfg, handlers)
	go c.Run()
	t.Cleanup(c.Close)
	return c
}

func TestClient_AuthOnEveryOpen(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	startClient(t, Config{URL: fs.url(), AuthUserID: 7}, Handlers{})

	// The handshake fires immediately after the open, with the configured
	// identity.
	frame := fs.nextFrame(t)
	req.Equal("auth", frame["type"])
	req.Equal(float64(7), frame["userId"])

	// Kill the connection server-side; the client must come back and
	// re-claim the same identity.
	fs.nextConn(t).Close()

	frame = fs.nextFrame(t)
	req.Equal("auth", frame["type"])
	req.Equal(float64(7), frame["userId"])
}

func TestClient_ReconnectDelay(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	delay := 200 * time.Millisecond
	startClient(t, Config{URL: fs.url(), AuthUserID: 1, ReconnectDelay: delay}, Handlers{})

	fs.nextFrame(t) // first auth
	dropped := time.Now()
	fs.nextConn(t).Close()

	fs.nextFrame(t) // auth from the reconnect
	req.GreaterOrEqual(time.Since(dropped), delay,
		"reconnect must wait the full fixed delay")
}

func TestClient_StateTransitions(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	states := make(chan State, 16)
	startClient(t, Config{URL: fs.url(), AuthUserID: 1}, Handlers{
		OnStateChange: func(s State) { states <- s },
	})

	nextState := func() State {
		select {
		case s := <-states:
			return s
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a state change")
			return ""
		}
	}

	req.Equal(StateConnecting, nextState())
	req.Equal(StateOpen, nextState())

	fs.nextConn(t).Close()
	req.Equal(StateDisconnected, nextState())

	// The loop keeps going: connecting again after the delay.
	req.Equal(StateConnecting, nextState())
}

func TestClient_SendsDroppedWhenNotOpen(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	// Never started: both sends are silent no-ops, no panic, no error.
	idle := New(Config{URL: fs.url(), AuthUserID: 1}, Handlers{})
	idle.SendMessage("hello", 1, 2)
	idle.SendTyping(1, true)
	req.Equal(StateDisconnected, idle.State())

	select {
	case frame := <-fs.frames:
		t.Fatalf("expected no frame, got %v", frame)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_SendMessageWhenOpen(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	opened := make(chan struct{}, 1)
	client := startClient(t, Config{URL: fs.url(), AuthUserID: 1}, Handlers{
		OnStateChange: func(s State) {
			if s == StateOpen {
				opened <- struct{}{}
			}
		},
	})

	<-opened
	fs.nextFrame(t) // auth

	client.SendMessage("hi", 1, 2)
	frame := fs.nextFrame(t)
	req.Equal("message", frame["type"])
	req.Equal("hi", frame["content"])
	req.Equal(float64(1), frame["senderId"])
	req.Equal(float64(2), frame["receiverId"])
}

func TestClient_CloseStopsReconnect(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	client := startClient(t, Config{URL: fs.url(), AuthUserID: 1}, Handlers{})

	conn := fs.nextConn(t)
	fs.nextFrame(t) // auth

	client.Close()

	// The server sees the connection die.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]any
	req.Error(conn.ReadJSON(&frame))

	// And no reconnect attempt follows, even past the retry delay.
	select {
	case <-fs.conns:
		t.Fatal("client dialed again after Close")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestClient_CloseBeforeRun(t *testing.T) {
	fs := newFakeServer(t)

	client := New(Config{URL: fs.url(), AuthUserID: 1}, Handlers{})
	client.Close()

	done := make(chan struct{})
	go func() {
		client.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return for a closed client")
	}

	select {
	case <-fs.conns:
		t.Fatal("closed client must not dial")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_DispatchesServerFrames(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	messages := make(chan models.Message, 1)
	typings := make(chan bool, 1)
	errs := make(chan string, 1)
	startClient(t, Config{URL: fs.url(), AuthUserID: 1}, Handlers{
		OnMessage: func(msg models.Message) { messages <- msg },
		OnTyping:  func(userID int, isTyping bool) { typings <- isTyping },
		OnError:   func(msg string) { errs <- msg },
	})

	conn := fs.nextConn(t)
	fs.nextFrame(t) // auth

	req.NoError(conn.WriteJSON(map[string]any{
		"type": "message",
		"data": models.Message{ID: 5, Content: "yo", SenderID: 2, ReceiverID: 1, Timestamp: time.Now()},
	}))
	req.NoError(conn.WriteJSON(map[string]any{"type": "typing", "userId": 2, "isTyping": true}))
	req.NoError(conn.WriteJSON(map[string]any{"type": "error", "message": "Failed to save message"}))

	select {
	case msg := <-messages:
		req.Equal("yo", msg.Content)
		req.Equal(5, msg.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("message handler not invoked")
	}
	select {
	case isTyping := <-typings:
		req.True(isTyping)
	case <-time.After(2 * time.Second):
		t.Fatal("typing handler not invoked")
	}
	select {
	case errMsg := <-errs:
		req.Equal("Failed to save message", errMsg)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler not invoked")
	}
}
