package websocket

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/parleychat/parley/internal/models"
)

// FrameType discriminates the JSON frames exchanged over the socket.
type FrameType string

const (
	FrameTypeAuth    FrameType = "auth"
	FrameTypeMessage FrameType = "message"
	FrameTypeTyping  FrameType = "typing"
	FrameTypeError   FrameType = "error"
)

var validate = validator.New()

// inboundFrame is the superset of fields a client may send. Every frame
// carries the type discriminator; the remaining fields depend on it.
type inboundFrame struct {
	Type FrameType `json:"type"`

	// message
	Content    string `json:"content"`
	SenderID   *int   `json:"senderId"`
	ReceiverID *int   `json:"receiverId"`

	// auth and typing
	UserID   int  `json:"userId"`
	IsTyping bool `json:"isTyping"`
}

// chatMessage is the validated payload of an inbound message frame.
type chatMessage struct {
	Content    string `validate:"required"`
	SenderID   *int   `validate:"required"`
	ReceiverID *int   `validate:"required"`
}

// validateChatMessage checks the shape of an inbound message frame: content
// must be a non-empty string and both party IDs must be present.
func validateChatMessage(f *inboundFrame) error {
	return validate.Struct(chatMessage{
		Content:    f.Content,
		SenderID:   f.SenderID,
		ReceiverID: f.ReceiverID,
	})
}

// messageFrame is broadcast to every connection after a successful persist.
type messageFrame struct {
	Type FrameType       `json:"type"`
	Data *models.Message `json:"data"`
}

// typingFrame is relayed to every connection except the sender's own.
type typingFrame struct {
	Type     FrameType `json:"type"`
	UserID   int       `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

// errorFrame is sent only to the connection whose frame failed.
type errorFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
}

func newMessageFrame(msg *models.Message) []byte {
	data, _ := json.Marshal(messageFrame{Type: FrameTypeMessage, Data: msg})
	return data
}

func newTypingFrame(userID int, isTyping bool) []byte {
	data, _ := json.Marshal(typingFrame{Type: FrameTypeTyping, UserID: userID, IsTyping: isTyping})
	return data
}

func newErrorFrame(message string) []byte {
	data, _ := json.Marshal(errorFrame{Type: FrameTypeError, Message: message})
	return data
}
