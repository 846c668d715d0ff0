package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateChatMessage(t *testing.T) {
	one, two := 1, 2

	valid := &inboundFrame{Content: "hi", SenderID: &one, ReceiverID: &two}
	require.NoError(t, validateChatMessage(valid))

	invalid := []*inboundFrame{
		{SenderID: &one, ReceiverID: &two},
		{Content: "", SenderID: &one, ReceiverID: &two},
		{Content: "hi", ReceiverID: &two},
		{Content: "hi", SenderID: &one},
		{},
	}
	for _, frame := range invalid {
		require.Error(t, validateChatMessage(frame), "frame %+v must fail validation", frame)
	}
}

func TestTypingFrameKeepsFalse(t *testing.T) {
	// isTyping=false is the clear signal and must survive marshaling.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(newTypingFrame(3, false), &decoded))

	require.Equal(t, "typing", decoded["type"])
	require.Equal(t, float64(3), decoded["userId"])
	require.Equal(t, false, decoded["isTyping"])
}
