package chatclient

import (
	"sync"
	"time"
)

// DefaultTypingClear is how long after the last keystroke the typing
// indicator is withdrawn.
const DefaultTypingClear = 2 * time.Second

// TypingNotifier turns keystrokes into typing frames. Every Touch sends
// isTyping=true and reschedules a single clear timer, so isTyping=false goes
// out exactly once, after the last keystroke. The timer is independent of
// the client's reconnect timer.
type TypingNotifier struct {
	client *Client
	userID int
	clear  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewTypingNotifier creates a notifier for the given user. A non-positive
// clear duration falls back to DefaultTypingClear.
func NewTypingNotifier(client *Client, userID int, clear time.Duration) *TypingNotifier {
	if clear <= 0 {
		clear = DefaultTypingClear
	}
	return &TypingNotifier{
		client: client,
		userID: userID,
		clear:  clear,
	}
}

// Touch records a keystroke.
func (n *TypingNotifier) Touch() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.client.SendTyping(n.userID, true)

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.clear, n.expire)
}

// Stop cancels the pending clear and withdraws the indicator immediately.
// Used when a message is not being composed anymore, e.g. on exit.
func (n *TypingNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.client.SendTyping(n.userID, false)
}

func (n *TypingNotifier) expire() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.timer = nil
	n.client.SendTyping(n.userID, false)
}
