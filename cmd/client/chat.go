package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/parleychat/parley/internal/chatclient"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/models"
)

// runChat opens a conversation with the chat partner: prints the stored
// history, marks unread incoming messages as read, then relays lines from
// stdin over the reconnecting WebSocket client until the user types 'exit'.
func runChat(cfg config.Client, api *apiClient, current, partner *models.User) {
	history, err := api.FetchMessages(current.ID, partner.ID)
	if err != nil {
		fmt.Println("Could not load history:", err)
		return
	}
	for _, msg := range history {
		printMessage(current, partner, msg)
		if !msg.Read && msg.ReceiverID == current.ID {
			if err := api.MarkMessageRead(msg.ID); err != nil {
				fmt.Println("Could not mark message read:", err)
			}
		}
	}

	client := chatclient.New(chatclient.Config{
		URL:            wsURL(cfg.ServerURL),
		AuthUserID:     cfg.AuthUserID,
		ReconnectDelay: cfg.ReconnectDelay,
	}, chatclient.Handlers{
		OnMessage: func(msg models.Message) {
			// The live channel is a global feed; show only frames
			// belonging to this conversation, like the history view.
			if !betweenUsers(msg, current.ID, partner.ID) {
				return
			}
			if msg.SenderID == current.ID {
				return // own echo, already printed on send
			}
			fmt.Print("\r")
			printMessage(current, partner, msg)
			fmt.Print("You: ")
		},
		OnTyping: func(userID int, isTyping bool) {
			if userID != partner.ID {
				return
			}
			if isTyping {
				fmt.Printf("\r%s is typing...\nYou: ", partner.Username)
			}
		},
		OnError: func(message string) {
			fmt.Printf("\rServer error: %s\nYou: ", message)
		},
		OnStateChange: func(state chatclient.State) {
			switch state {
			case chatclient.StateOpen:
				fmt.Print("\r[connected]\nYou: ")
			case chatclient.StateDisconnected:
				fmt.Print("\r[disconnected]\nYou: ")
			}
		},
	})
	go client.Run()
	defer client.Close()

	notifier := chatclient.NewTypingNotifier(client, current.ID, 0)

	fmt.Printf("\nChatting with %s. Type a message and press Enter; 'exit' to leave.\n", partner.Username)
	fmt.Println("----------------------------------------")
	fmt.Print("You: ")

	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Print("You: ")
			continue
		}
		if line == "exit" {
			notifier.Stop()
			fmt.Println("Leaving chat...")
			return
		}

		notifier.Touch()
		client.SendMessage(line, current.ID, partner.ID)
		fmt.Print("You: ")
	}
}

func printMessage(current, partner *models.User, msg models.Message) {
	name := partner.Username
	if msg.SenderID == current.ID {
		name = "You"
	}
	fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04"), name, msg.Content)
}

func betweenUsers(msg models.Message, a, b int) bool {
	return (msg.SenderID == a && msg.ReceiverID == b) ||
		(msg.SenderID == b && msg.ReceiverID == a)
}

// wsURL derives the WebSocket endpoint from the server's HTTP base URL.
func wsURL(serverURL string) string {
	url := strings.TrimSuffix(serverURL, "/")
	if strings.HasPrefix(url, "https://") {
		url = "wss://" + strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/ws"
}
