package config

import "time"

// Config holds runtime settings for the CSVDesk client.
type Config struct {
	// ServerURL is the base URL of the backend HTTP API.
	ServerURL string
	// WebsocketURL is the realtime notification endpoint.
	WebsocketURL string
	// DatabasePath is the SQLite file holding persisted credentials.
	DatabasePath string
	// HeartbeatInterval is the websocket ping period.
	HeartbeatInterval time.Duration
	// ReconnectDelay is the pause before redialing a dropped websocket.
	ReconnectDelay time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.WebsocketURL = "ws://127.0.0.1:8000/ws"
	c.DatabasePath = "csvdesk.db"
	c.HeartbeatInterval = 30 * time.Second
	c.ReconnectDelay = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if present) and command-line flags
// (if present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
