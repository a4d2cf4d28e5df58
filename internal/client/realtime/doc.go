// Package realtime maintains the client's websocket channel to the server.
//
// The channel is a long-lived background connection that carries server
// push notifications (file list changes) and a ping/pong heartbeat. It
// reconnects automatically after any disconnect and keeps running until
// Close is called. Consumers subscribe to typed events and to connection
// state changes; they never touch the socket directly.
package realtime
