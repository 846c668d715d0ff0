package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/handlers"
	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/websocket"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	godotenv.Load()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := seedUsers(st); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	// Create the websocket hub and start its event loop.
	hub := websocket.NewHub(st)
	go hub.Run()

	h := handlers.NewHandler(st, hub)
	mux := http.NewServeMux()
	h.Register(mux)

	log.Printf("Parley chat server starting on %s", cfg.HTTPAddr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, mux))
}

// seedUsers provisions the two demo accounts on first boot. There is no
// signup flow; users are presumed to exist before anyone logs in.
func seedUsers(st *store.Store) error {
	users, err := st.GetAllUsers()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	for _, u := range []models.User{
		{Username: "alice", Password: "password1"},
		{Username: "bob", Password: "password2"},
	} {
		if err := st.CreateUser(&u); err != nil {
			return err
		}
		log.Printf("Seeded user %q (id %d)", u.Username, u.ID)
	}
	return nil
}
