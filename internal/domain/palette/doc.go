// Package palette implements the command palette: quick launchers for the
// panel applications, a tools lookup, and "?"-prefixed AI questions.
package palette
