// Package utils holds input validation shared by the HTTP and WebSocket
// surfaces. Every failure wraps ErrInvalid.
package utils
