// Package middleware provides the gin middleware in front of the desktop
// API: CORS for the browser shell and per-client rate limiting.
package middleware
