package config

import (
	"flag"
	"os"
	"time"

	"github.com/csvdesk/csvdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend HTTP API (default from Config)
//	-w string   URL of the realtime websocket endpoint
//	-d string   path of the local credential database
//	-i int      heartbeat interval in seconds
//	-r int      reconnect delay in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-i", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	fs.StringVar(&cfg.WebsocketURL, "w", cfg.WebsocketURL, "websocket endpoint URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local credential database")
	heartbeat := fs.Int("i", int(cfg.HeartbeatInterval.Seconds()), "heartbeat interval (in seconds)")
	reconnect := fs.Int("r", int(cfg.ReconnectDelay.Seconds()), "reconnect delay (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HeartbeatInterval = time.Duration(*heartbeat) * time.Second
	cfg.ReconnectDelay = time.Duration(*reconnect) * time.Second
}
