// Package main is the entry point for the ZERO HUB backend.
//
// The server hosts the virtual desktop: the window manager, the simulated
// terminal, the command palette and the AI overlay are driven over REST
// and a WebSocket event stream.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	zerohub serve --port 8000 --catalog ./simulations
//	zerohub serve --catalog ./simulations --watch
//	zerohub serve --dev --no-oracle
//	zerohub catalog validate ./simulations
//	zerohub catalog list --dir ./simulations
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
