package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/csvdesk/csvdesk/internal/flagx"
	"github.com/csvdesk/csvdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "3s" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	WebsocketURL      string         `json:"websocket_url"`
	DatabasePath      string         `json:"database_path"`
	HeartbeatInterval timex.Duration `json:"heartbeat_interval"`
	ReconnectDelay    timex.Duration `json:"reconnect_delay"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c / -config flags via flagx.JsonConfigFlags; with
// no path given nothing is loaded. Read or unmarshal errors panic, the
// caller decides whether to recover. Only fields present in the file
// override the current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.WebsocketURL != "" {
		cfg.WebsocketURL = jc.WebsocketURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.HeartbeatInterval.Duration > 0 {
		cfg.HeartbeatInterval = time.Duration(jc.HeartbeatInterval.Duration)
	}
	if jc.ReconnectDelay.Duration > 0 {
		cfg.ReconnectDelay = time.Duration(jc.ReconnectDelay.Duration)
	}
}
