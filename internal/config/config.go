package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all resonate configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	YouTube  YouTubeConfig
}

type ServerConfig struct {
	Bind string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type YouTubeConfig struct {
	BaseURL        string
	TimeoutSeconds int // per-page-fetch timeout
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38383,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		YouTube: YouTubeConfig{
			BaseURL:        "https://www.youtube.com",
			TimeoutSeconds: 10,
		},
	}
}

// Load returns the default config with environment overrides applied.
// Reads .env from the working directory if present.
func Load() Config {
	godotenv.Load()

	cfg := Default()
	cfg.Server.Bind = getEnv("RESONATE_BIND", cfg.Server.Bind)
	cfg.Server.Port = getEnvInt("RESONATE_PORT", cfg.Server.Port)
	cfg.Database.Path = getEnv("RESONATE_DB", cfg.Database.Path)
	cfg.YouTube.BaseURL = getEnv("RESONATE_YT_URL", cfg.YouTube.BaseURL)
	cfg.YouTube.TimeoutSeconds = getEnvInt("RESONATE_YT_TIMEOUT", cfg.YouTube.TimeoutSeconds)
	return cfg
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
