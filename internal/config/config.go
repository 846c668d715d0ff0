package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server holds the configuration for the chat server.
type Server struct {
	// HTTP_ADDR is the listen address for the HTTP and WebSocket endpoints.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// DATABASE_URL is the Postgres connection string.
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
}

// Client holds the configuration for the terminal client.
type Client struct {
	// SERVER_URL is the base HTTP URL of the chat server.
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	// AUTH_USER_ID is the identity claimed on every WebSocket open. It is
	// deliberately not derived from the logged-in user; the default of 1
	// reproduces the reconnect handshake of the reference client.
	AuthUserID int `envconfig:"AUTH_USER_ID" default:"1"`
	// RECONNECT_DELAY is the fixed wait between connection attempts.
	ReconnectDelay time.Duration `envconfig:"RECONNECT_DELAY" default:"3s"`
}

// LoadServer reads server configuration from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// LoadClient reads client configuration from the environment.
func LoadClient() (Client, error) {
	var cfg Client
	err := envconfig.Process("", &cfg)
	return cfg, err
}
