package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/models"
)

// app holds the REPL state: configuration, the HTTP client, and whoever is
// currently logged in.
type app struct {
	cfg     config.Client
	api     *apiClient
	current *models.User
}

func (a *app) executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	args := strings.Fields(input)
	switch strings.ToLower(args[0]) {
	case "login":
		a.login(args[1:])
	case "users":
		a.listUsers()
	case "chat":
		a.chat(args[1:])
	case "help":
		printHelp()
	case "exit":
		fmt.Println("Bye.")
		os.Exit(0)
	default:
		fmt.Println("Unknown command. Type 'help' for a list of commands.")
	}
}

// login selects a user account and checks the password against the value the
// server hands out. The compare is done here, not on the server.
func (a *app) login(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: login <username> <password>")
		return
	}
	username, password := args[0], args[1]

	users, err := a.api.FetchUsers()
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}

	user, found := lo.Find(users, func(u models.User) bool {
		return u.Username == username
	})
	if !found {
		fmt.Println("User not found:", username)
		return
	}
	if user.Password != password {
		fmt.Println("Invalid password")
		return
	}

	a.current = &user
	fmt.Printf("Logged in as %s (id %d)\n", user.Username, user.ID)
}

func (a *app) listUsers() {
	users, err := a.api.FetchUsers()
	if err != nil {
		fmt.Println("Could not list users:", err)
		return
	}
	names := lo.Map(users, func(u models.User, _ int) string {
		return fmt.Sprintf("%s (id %d)", u.Username, u.ID)
	})
	fmt.Println(strings.Join(names, "\n"))
}

func (a *app) chat(args []string) {
	if a.current == nil {
		fmt.Println("Please login first.")
		return
	}
	if len(args) != 1 {
		fmt.Println("Usage: chat <username>")
		return
	}

	users, err := a.api.FetchUsers()
	if err != nil {
		fmt.Println("Could not fetch users:", err)
		return
	}
	partner, found := lo.Find(users, func(u models.User) bool {
		return u.Username == args[0]
	})
	if !found {
		fmt.Println("User not found:", args[0])
		return
	}
	if partner.ID == a.current.ID {
		fmt.Println("Pick someone other than yourself.")
		return
	}

	runChat(a.cfg, a.api, a.current, &partner)
}

func printHelp() {
	fmt.Println("\n=== Parley client ===")
	fmt.Printf("%-18s : %s\n", "login <user> <pw>", "Log in as one of the seeded users")
	fmt.Printf("%-18s : %s\n", "users", "List all users")
	fmt.Printf("%-18s : %s\n", "chat <user>", "Open a conversation")
	fmt.Printf("%-18s : %s\n", "help", "Show this help message")
	fmt.Printf("%-18s : %s\n", "exit", "Quit")
}

func noCompleter(d prompt.Document) []prompt.Suggest {
	return []prompt.Suggest{}
}

func main() {
	godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a := &app{
		cfg: cfg,
		api: newAPIClient(cfg.ServerURL),
	}

	fmt.Println("Welcome to Parley")
	fmt.Println("Type 'help' to see available commands")

	p := prompt.New(
		a.executor,
		noCompleter,
		prompt.OptionPrefix("> "),
		prompt.OptionTitle("Parley"),
	)
	p.Run()
}
