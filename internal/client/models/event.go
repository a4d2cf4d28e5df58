package models

import (
	"encoding/json"
	"time"
)

// EventKind tags a realtime notification. New kinds may appear on the wire;
// unrecognized ones must be ignored by consumers, never treated as an error.
type EventKind string

const (
	// KindListChanged signals that the server-side file list changed and
	// cached listings should be re-fetched.
	KindListChanged EventKind = "list_changed"
)

// UpdateEvent is a typed notification delivered over the realtime channel.
type UpdateEvent struct {
	Kind    EventKind
	Payload json.RawMessage
}

// ConnectionStatus describes the realtime channel's socket state.
type ConnectionStatus string

const (
	ConnectionClosed     ConnectionStatus = "closed"
	ConnectionConnecting ConnectionStatus = "connecting"
	ConnectionOpen       ConnectionStatus = "open"
)

// ChannelState is an observable snapshot of the realtime channel.
// ReconnectAttempt counts consecutive failed connects and resets to zero on
// every successful open.
type ChannelState struct {
	Connection       ConnectionStatus
	LastHeartbeatAt  time.Time
	ReconnectAttempt int
}
