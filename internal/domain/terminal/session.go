package terminal

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/id"
)

const (
	// ExitCommand ends the session, compared case-insensitively
	ExitCommand = "exit"
	// HelpHint is revealed by the typewriter after the scenario banner
	HelpHint = "Type `help` for a list of available commands."
	// ExitMessage is appended when the user exits
	ExitMessage = "Exiting simulation..."
	// EchoPrefix is prepended to every accepted command line
	EchoPrefix = "> "
)

// State is the session state machine position
type State int

const (
	StateBanner State = iota
	StateIdle
	StateProcessing
	StateExited
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateBanner:
		return "banner"
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// MarshalText renders the state for JSON payloads
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome classifies a submitted command
type Outcome string

const (
	OutcomeMatched  Outcome = "matched"
	OutcomeNotFound Outcome = "not_found"
	OutcomeExit     Outcome = "exit"
)

// Timings controls the pacing of the session
type Timings struct {
	// BannerPause is the wait between the scenario line and the help hint
	BannerPause time.Duration
	// TypeInterval is the per-character typewriter delay
	TypeInterval time.Duration
	// DefaultDelay applies to steps without an explicit delay and to
	// unknown commands
	DefaultDelay time.Duration
	// ExitGrace is the wait between the exit message and the close signal
	ExitGrace time.Duration
}

// DefaultTimings returns the stock pacing
func DefaultTimings() Timings {
	return Timings{
		BannerPause:  time.Second,
		TypeInterval: 20 * time.Millisecond,
		DefaultDelay: 500 * time.Millisecond,
		ExitGrace:    time.Second,
	}
}

// Snapshot is the presentation view of a session
type Snapshot struct {
	ID            id.SessionID `json:"id"`
	Scenario      string       `json:"scenario"`
	Lines         []string     `json:"lines"`
	State         State        `json:"state"`
	AwaitingInput bool         `json:"awaiting_input"`
	Exited        bool         `json:"exited"`
}

// Options configures a session
type Options struct {
	Scheduler clock.Scheduler
	Timings   Timings
	Logger    *zap.Logger

	// OnChange receives a snapshot after every transcript or state change
	OnChange func(Snapshot)
	// OnExit fires once the exit grace delay has elapsed
	OnExit func()
	// OnCommand reports how each accepted command was resolved
	OnCommand func(Outcome)
}

// Session runs one simulation. All timed work goes through the scheduler
// and is tagged with the session generation; Close bumps the generation so
// callbacks already in flight are dropped.
type Session struct {
	id      id.SessionID
	program *Program
	sched   clock.Scheduler
	timings Timings
	logger  *zap.Logger

	onChange  func(Snapshot)
	onExit    func()
	onCommand func(Outcome)

	mu      sync.Mutex
	lines   []string               // Protected by mu
	state   State                  // Protected by mu
	gen     uint64                 // Protected by mu
	closed  bool                   // Protected by mu
	started bool                   // Protected by mu
	seq     uint64                 // Protected by mu
	timers  map[uint64]clock.Timer // Protected by mu
}

// NewSession prepares a session for a compiled program. Nothing happens
// until Start.
func NewSession(program *Program, opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	sid := id.NewSessionID()
	return &Session{
		id:        sid,
		program:   program,
		sched:     opts.Scheduler,
		timings:   opts.Timings,
		logger:    opts.Logger.With(zap.String("session_id", sid.String())),
		onChange:  opts.OnChange,
		onExit:    opts.OnExit,
		onCommand: opts.OnCommand,
		state:     StateBanner,
		timers:    make(map[uint64]clock.Timer),
	}
}

// ID returns the session identity
func (s *Session) ID() id.SessionID { return s.id }

// Start shows the scenario banner and begins the typewriter reveal of the
// help hint. Calling Start more than once has no effect.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.lines = append(s.lines, "Scenario: "+s.program.Scenario())
	s.scheduleLocked(s.timings.BannerPause, func() {
		s.lines = append(s.lines, "")
		s.typeLocked([]rune(HelpHint), 0)
	})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("Simulation started", zap.String("scenario", s.program.Scenario()))
	s.notify(snap)
}

// typeLocked reveals text[:i+1] on the last line, one character per tick
func (s *Session) typeLocked(text []rune, i int) {
	if i >= len(text) {
		s.state = StateIdle
		return
	}
	s.lines[len(s.lines)-1] = string(text[:i+1])
	s.scheduleLocked(s.timings.TypeInterval, func() {
		s.typeLocked(text, i+1)
	})
}

// Submit feeds a command line to the session. It reports whether the input
// was accepted; input outside the idle state, blank input and input after
// close are ignored.
func (s *Session) Submit(input string) bool {
	command := strings.TrimSpace(input)

	s.mu.Lock()
	if s.closed || s.state != StateIdle || command == "" {
		s.mu.Unlock()
		return false
	}

	s.lines = append(s.lines, EchoPrefix+command)
	s.state = StateProcessing

	var outcome Outcome
	switch step, _, ok := s.program.Resolve(command); {
	case strings.EqualFold(command, ExitCommand):
		outcome = OutcomeExit
		s.lines = append(s.lines, ExitMessage)
		s.state = StateExited
		s.scheduleLocked(s.timings.ExitGrace, s.exitLocked)

	case ok:
		outcome = OutcomeMatched
		output := step.Output
		s.scheduleLocked(step.delay(s.timings.DefaultDelay), func() {
			s.lines = append(s.lines, output...)
			s.state = StateIdle
		})

	default:
		outcome = OutcomeNotFound
		s.scheduleLocked(s.timings.DefaultDelay, func() {
			s.lines = append(s.lines, notFoundLine(command))
			s.state = StateIdle
		})
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("Command submitted",
		zap.String("command", command),
		zap.String("outcome", string(outcome)),
	)
	if s.onCommand != nil {
		s.onCommand(outcome)
	}
	s.notify(snap)
	return true
}

func notFoundLine(command string) string {
	return "Command not found: " + command + ". Type 'help' for available commands."
}

// exitLocked marks the exit grace delay as elapsed. The callback itself is
// invoked by fire once the lock is released.
func (s *Session) exitLocked() {
	s.closed = true
}

// Close tears the session down. Pending reveals and responses are
// cancelled and will never touch the transcript.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && len(s.timers) == 0 {
		return
	}
	s.closed = true
	s.gen++
	for seq, t := range s.timers {
		t.Stop()
		delete(s.timers, seq)
	}
	s.logger.Debug("Simulation closed")
}

// Snapshot returns the current transcript and input state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Closed reports whether the session has been torn down or has exited
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) snapshotLocked() Snapshot {
	lines := make([]string, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{
		ID:            s.id,
		Scenario:      s.program.Scenario(),
		Lines:         lines,
		State:         s.state,
		AwaitingInput: !s.closed && s.state == StateIdle,
		Exited:        s.closed || s.state == StateExited,
	}
}

// scheduleLocked registers fn to run after d under the current generation
func (s *Session) scheduleLocked(d time.Duration, fn func()) {
	s.seq++
	seq, gen := s.seq, s.gen
	s.timers[seq] = s.sched.AfterFunc(d, func() {
		s.fire(gen, seq, fn)
	})
}

func (s *Session) fire(gen, seq uint64, fn func()) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, seq)

	wasClosed := s.closed
	fn()
	exited := !wasClosed && s.closed
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if exited {
		s.logger.Debug("Simulation exited")
		if s.onExit != nil {
			s.onExit()
		}
		return
	}
	s.notify(snap)
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
