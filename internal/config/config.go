package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Addr          string
	DataDir       string
	SessionSecret string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:          os.Getenv("EVENTLY_ADDR"),
		DataDir:       os.Getenv("EVENTLY_DATA_DIR"),
		SessionSecret: os.Getenv("EVENTLY_SESSION_SECRET"),
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("Required environment variable EVENTLY_SESSION_SECRET is not set.")
	}

	return cfg
}
