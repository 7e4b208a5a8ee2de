// Package ws provides the desktop's WebSocket event stream.
//
// Every connection is subscribed to the shell bus: window, terminal,
// overlay, notification and sound events are pushed as they happen. The
// browser drives the desktop over the same socket.
//
// Message Types (Client → Server):
//   - open: open or focus the window for a view
//   - focus, close: act on a window id
//   - submit: feed a command line to the running simulation
//   - state: request the full desktop picture
//   - chat: stream an AI chat reply
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system, state: sent on connect
//   - windows, terminal, oracle, notification, palette, sound, desktop: shell events
//   - ack: result of a desktop action
//   - token, complete: chat stream
//   - error: error occurred
//
// Example Usage:
//
//	handler := ws.NewHandler(controller, oracleClient, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
