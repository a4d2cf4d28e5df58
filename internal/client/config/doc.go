// Package config loads runtime configuration for the CSVDesk client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override everything earlier.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-w string   URL of the realtime websocket endpoint
//	-d string   path of the local credential database
//	-i int      heartbeat interval (seconds)
//	-r int      reconnect delay (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be
// either strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "websocket_url": "ws://127.0.0.1:8000/ws",
//	  "database_path": "csvdesk.db",
//	  "heartbeat_interval": "30s",
//	  "reconnect_delay": "3s"
//	}
package config
