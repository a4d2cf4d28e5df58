package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	envServerURL         = "CSVDESK_SERVER_URL"
	envWebsocketURL      = "CSVDESK_WS_URL"
	envDatabasePath      = "CSVDESK_DB_PATH"
	envHeartbeatInterval = "CSVDESK_HEARTBEAT_SECONDS"
	envReconnectDelay    = "CSVDESK_RECONNECT_SECONDS"
)

// parseEnv overlays Config with values from the process environment. A
// .env file in the working directory is loaded first when present;
// variables already set in the environment win over the file.
func parseEnv(cfg *Config) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if v := os.Getenv(envServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(envWebsocketURL); v != "" {
		cfg.WebsocketURL = v
	}
	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envHeartbeatInterval); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.HeartbeatInterval = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv(envReconnectDelay); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ReconnectDelay = time.Duration(secs) * time.Second
		}
	}
}
