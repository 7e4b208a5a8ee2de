package shell

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/notify"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
)

// EventType names what changed
type EventType string

const (
	EventWindows      EventType = "windows"
	EventTerminal     EventType = "terminal"
	EventOracle       EventType = "oracle"
	EventNotification EventType = "notification"
	EventPalette      EventType = "palette"
	EventSound        EventType = "sound"
	EventDesktop      EventType = "desktop"
)

// Event is a state change pushed to the presentation layer
type Event struct {
	Type          EventType             `json:"type"`
	Windows       []window.Record       `json:"windows,omitempty"`
	Simulation    *SimulationState      `json:"simulation,omitempty"`
	Oracle        *OracleState          `json:"oracle,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
	Palette       *PaletteState         `json:"palette,omitempty"`
	Cue           Cue                   `json:"cue,omitempty"`
	Started       bool                  `json:"started,omitempty"`
}

// SimulationState is the terminal overlay
type SimulationState struct {
	Active   bool               `json:"active"`
	Terminal *terminal.Snapshot `json:"terminal,omitempty"`
}

// OracleState is the AI chat overlay
type OracleState struct {
	Open   bool   `json:"open"`
	Prompt string `json:"prompt,omitempty"`
}

// PaletteState is the command palette overlay
type PaletteState struct {
	Open bool `json:"open"`
}

// Bus fans events out to subscribers. Publishing never blocks; a
// subscriber that falls behind loses events.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]chan Event // Protected by mu
	next   uint64                // Protected by mu
	buffer int
	logger *zap.Logger
}

// NewBus creates an event bus with per-subscriber buffering
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[uint64]chan Event),
		buffer: buffer,
		logger: logger.Named("bus"),
	}
}

// Subscribe returns a channel of events and a function that cancels the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("Subscriber lagging, event dropped",
				zap.Uint64("subscriber", id),
				zap.String("type", string(e.Type)),
			)
		}
	}
}

// Subscribers returns the number of live subscriptions
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
