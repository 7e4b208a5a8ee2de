// Package id provides ULID-based identifiers for hub resources.
//
// Identifiers are prefixed by kind so logs stay readable:
//   - sim_*  terminal simulation sessions
//   - conn_* WebSocket connections
//   - req_*  API requests
//
// Window ids are not generated here: the window manager hands out small
// monotonic integers so stacking stays a pure function of the operations.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a terminal simulation session
type SessionID string

// ConnID identifies a WebSocket connection
type ConnID string

// RequestID identifies an API request
type RequestID string

const (
	SessionPrefix = "sim"
	ConnPrefix    = "conn"
	RequestPrefix = "req"
)

// Generator produces monotonic ULIDs
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Monotonic entropy keeps ids generated within the same millisecond ordered.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// WithPrefix creates a "prefix_ULID" string
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSessionID generates a simulation session id
func NewSessionID() SessionID {
	return SessionID(Default().WithPrefix(SessionPrefix))
}

// NewConnID generates a connection id
func NewConnID() ConnID {
	return ConnID(Default().WithPrefix(ConnPrefix))
}

// NewRequestID generates a request id
func NewRequestID() RequestID {
	return RequestID(Default().WithPrefix(RequestPrefix))
}

func (id SessionID) String() string { return string(id) }
func (id ConnID) String() string    { return string(id) }
func (id RequestID) String() string { return string(id) }

// Split separates a prefixed id into its prefix and ULID parts
func Split(s string) (prefix string, value ulid.ULID, err error) {
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok {
		return "", ulid.ULID{}, fmt.Errorf("id %q has no prefix", s)
	}
	value, err = ulid.Parse(raw)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("id %q: %w", s, err)
	}
	return prefix, value, nil
}

// IsValid reports whether s is a well-formed prefixed id
func IsValid(s string) bool {
	_, _, err := Split(s)
	return err == nil
}

// Timestamp extracts the creation time of a prefixed id
func Timestamp(s string) (time.Time, error) {
	_, value, err := Split(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(value.Time()), nil
}
