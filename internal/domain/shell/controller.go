package shell

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/notify"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
)

var (
	// ErrSimulationActive is returned when launching while a simulation runs
	ErrSimulationActive = errors.New("a simulation is already active")
	// ErrNoSimulation is returned when no simulation is running
	ErrNoSimulation = errors.New("no active simulation")
)

// Welcome is the banner posted when the desktop starts
var Welcome = notify.Notification{
	Title:    "Welcome to ZERO HUB",
	Message:  "System initialized successfully. All modules are online.",
	Type:     notify.TypeSuccess,
	Duration: notify.Duration(6 * time.Second),
}

// Options configures a controller
type Options struct {
	Loop      *Loop
	Scheduler clock.Scheduler
	Timings   terminal.Timings
	Sound     SoundPlayer
	Notifier  Notifier
	Bus       *Bus
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
}

// State is a full picture of the desktop
type State struct {
	Started    bool            `json:"started"`
	Windows    []window.Record `json:"windows"`
	Simulation SimulationState `json:"simulation"`
	Oracle     OracleState     `json:"oracle"`
	Palette    PaletteState    `json:"palette"`
}

// Controller wires desktop actions to the window manager and the terminal
// session. Every handler runs on the loop.
type Controller struct {
	loop     *Loop
	sched    clock.Scheduler
	timings  terminal.Timings
	windows  *window.Manager
	sound    SoundPlayer
	notifier Notifier
	bus      *Bus
	metrics  *monitoring.Metrics
	logger   *zap.Logger

	// Owned by the loop
	started bool
	session *terminal.Session
	oracle  OracleState
	palette PaletteState
}

// NewController creates a controller. The loop must be started before
// any handler is called.
func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Loop == nil {
		opts.Loop = NewLoop(opts.Logger)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.Bus == nil {
		opts.Bus = NewBus(0, opts.Logger)
	}
	logger := opts.Logger.Named("shell")

	c := &Controller{
		loop:     opts.Loop,
		sched:    opts.Loop.Scheduler(opts.Scheduler),
		timings:  opts.Timings,
		sound:    opts.Sound,
		notifier: opts.Notifier,
		bus:      opts.Bus,
		metrics:  opts.Metrics,
		logger:   logger,
	}
	if c.sound == nil {
		c.sound = SoundFunc(func(cue Cue) {
			c.bus.Publish(Event{Type: EventSound, Cue: cue})
		})
	}

	c.windows = window.NewManager().
		WithLogger(logger).
		OnOpen(func(r window.Record) {
			c.sound.Play(CueOpen)
			if c.metrics != nil {
				c.metrics.IncWindowsOpened(string(r.View))
			}
		}).
		OnChange(func(list []window.Record) {
			if c.metrics != nil {
				c.metrics.SetWindowsOpen(len(list))
			}
			c.bus.Publish(Event{Type: EventWindows, Windows: list})
		})
	return c
}

// Loop returns the controller's event loop
func (c *Controller) Loop() *Loop { return c.loop }

// Bus returns the event bus
func (c *Controller) Bus() *Bus { return c.bus }

// Windows returns the live windows, bottom to top
func (c *Controller) Windows() []window.Record { return c.windows.List() }

// HandleStart dismisses the splash screen: start cue, dashboard window and
// the welcome banner. Later calls do nothing.
func (c *Controller) HandleStart(ctx context.Context) (bool, error) {
	var first bool
	err := c.loop.Do(ctx, func() {
		if c.started {
			return
		}
		c.started, first = true, true

		c.sound.Play(CueStart)
		c.bus.Publish(Event{Type: EventDesktop, Started: true})
		c.windows.Open(window.ViewDashboard)
		if c.notifier != nil {
			c.notifier.Notify(Welcome)
		}
		c.logger.Info("Desktop started")
	})
	return first, err
}

// HandleOpenApp opens the window for view, or focuses the one already
// open. It reports whether a window was created.
func (c *Controller) HandleOpenApp(ctx context.Context, view window.View) (window.Record, bool, error) {
	var (
		rec     window.Record
		created bool
	)
	err := c.loop.Do(ctx, func() {
		rec, created = c.windows.Open(view)
	})
	return rec, created, err
}

// HandleFocusApp raises a window. Unknown ids are ignored.
func (c *Controller) HandleFocusApp(ctx context.Context, id int) (bool, error) {
	var changed bool
	err := c.loop.Do(ctx, func() {
		changed = c.windows.Focus(id)
	})
	return changed, err
}

// HandleCloseApp closes a window. Unknown ids are ignored.
func (c *Controller) HandleCloseApp(ctx context.Context, id int) (bool, error) {
	var closed bool
	err := c.loop.Do(ctx, func() {
		if closed = c.windows.Close(id); closed {
			c.sound.Play(CueClose)
		}
	})
	return closed, err
}

// HandleLaunchSimulation compiles a script and starts it. Malformed
// patterns are rejected before any session exists; so is a launch while
// another simulation is running.
func (c *Controller) HandleLaunchSimulation(ctx context.Context, script terminal.Script) (terminal.Snapshot, error) {
	program, err := terminal.Compile(script)
	if err != nil {
		c.rejected("malformed")
		return terminal.Snapshot{}, err
	}
	return c.HandleLaunchProgram(ctx, program)
}

// HandleLaunchProgram starts an already compiled simulation
func (c *Controller) HandleLaunchProgram(ctx context.Context, program *terminal.Program) (terminal.Snapshot, error) {
	var (
		snap   terminal.Snapshot
		active bool
	)
	err := c.loop.Do(ctx, func() {
		if c.session != nil {
			active = true
			return
		}

		c.sound.Play(CueOpen)
		var session *terminal.Session
		session = terminal.NewSession(program, terminal.Options{
			Scheduler: c.sched,
			Timings:   c.timings,
			Logger:    c.logger,
			OnChange:  c.publishTerminal,
			OnExit: func() {
				if c.session == session {
					c.endSimulation("exit")
				}
			},
			OnCommand: func(o terminal.Outcome) {
				if c.metrics != nil {
					c.metrics.RecordCommand(string(o))
				}
			},
		})
		c.session = session
		if c.metrics != nil {
			c.metrics.SimulationStarted(program.Scenario())
		}
		c.logger.Info("Simulation launched",
			zap.String("session_id", session.ID().String()),
			zap.String("scenario", program.Scenario()),
		)
		session.Start()
		snap = session.Snapshot()
	})
	if err != nil {
		return terminal.Snapshot{}, err
	}
	if active {
		c.rejected("active")
		return terminal.Snapshot{}, ErrSimulationActive
	}
	return snap, nil
}

// HandleSubmitCommand feeds a command line to the running simulation. It
// reports whether the session accepted it.
func (c *Controller) HandleSubmitCommand(ctx context.Context, input string) (bool, error) {
	var (
		accepted bool
		none     bool
	)
	err := c.loop.Do(ctx, func() {
		if c.session == nil {
			none = true
			return
		}
		accepted = c.session.Submit(input)
	})
	if err != nil {
		return false, err
	}
	if none {
		return false, ErrNoSimulation
	}
	return accepted, nil
}

// HandleCloseSimulation tears the running simulation down. Pending output
// is discarded. It reports whether a simulation was running.
func (c *Controller) HandleCloseSimulation(ctx context.Context) (bool, error) {
	var closed bool
	err := c.loop.Do(ctx, func() {
		if c.session == nil {
			return
		}
		closed = true
		c.endSimulation("closed")
	})
	return closed, err
}

// endSimulation runs on the loop
func (c *Controller) endSimulation(reason string) {
	session := c.session
	c.session = nil
	session.Close()

	c.sound.Play(CueClose)
	if c.metrics != nil {
		c.metrics.SimulationEnded()
	}
	c.logger.Info("Simulation ended",
		zap.String("session_id", session.ID().String()),
		zap.String("reason", reason),
	)
	c.bus.Publish(Event{Type: EventTerminal, Simulation: &SimulationState{Active: false}})
}

// Simulation returns the running session's snapshot
func (c *Controller) Simulation(ctx context.Context) (SimulationState, error) {
	var state SimulationState
	err := c.loop.Do(ctx, func() {
		state = c.simulationState()
	})
	return state, err
}

func (c *Controller) simulationState() SimulationState {
	if c.session == nil {
		return SimulationState{}
	}
	snap := c.session.Snapshot()
	return SimulationState{Active: true, Terminal: &snap}
}

func (c *Controller) publishTerminal(snap terminal.Snapshot) {
	c.bus.Publish(Event{Type: EventTerminal, Simulation: &SimulationState{Active: true, Terminal: &snap}})
}

// HandleAskOracle opens the AI overlay primed with prompt
func (c *Controller) HandleAskOracle(ctx context.Context, prompt string) (OracleState, error) {
	var state OracleState
	err := c.loop.Do(ctx, func() {
		c.sound.Play(CueOpen)
		c.oracle = OracleState{Open: true, Prompt: strings.TrimSpace(prompt)}
		state = c.oracle
		c.bus.Publish(Event{Type: EventOracle, Oracle: &state})
	})
	return state, err
}

// HandleCloseOracle closes the AI overlay and forgets its prompt
func (c *Controller) HandleCloseOracle(ctx context.Context) (bool, error) {
	var wasOpen bool
	err := c.loop.Do(ctx, func() {
		wasOpen = c.oracle.Open
		c.sound.Play(CueClose)
		c.oracle = OracleState{}
		state := c.oracle
		c.bus.Publish(Event{Type: EventOracle, Oracle: &state})
	})
	return wasOpen, err
}

// HandleTogglePalette flips the command palette and returns its new state
func (c *Controller) HandleTogglePalette(ctx context.Context) (bool, error) {
	var open bool
	err := c.loop.Do(ctx, func() {
		open = !c.palette.Open
		c.setPalette(open)
	})
	return open, err
}

// HandleKey applies desktop shortcuts: Ctrl/Cmd+K opens the palette and
// Escape closes it. It reports whether the key was consumed.
func (c *Controller) HandleKey(ctx context.Context, key Key) (bool, error) {
	var handled bool
	err := c.loop.Do(ctx, func() {
		switch {
		case (key.Ctrl || key.Meta) && strings.EqualFold(key.Key, "k"):
			handled = true
			c.setPalette(true)
		case key.Key == "Escape" && c.palette.Open:
			handled = true
			c.setPalette(false)
		}
	})
	return handled, err
}

// HandlePaletteAction runs a palette launcher: click cue, open the view,
// close the palette.
func (c *Controller) HandlePaletteAction(ctx context.Context, view window.View) (window.Record, error) {
	var rec window.Record
	err := c.loop.Do(ctx, func() {
		c.sound.Play(CueClick)
		rec, _ = c.windows.Open(view)
		c.setPalette(false)
	})
	return rec, err
}

// setPalette runs on the loop
func (c *Controller) setPalette(open bool) {
	if open {
		c.sound.Play(CueOpen)
	}
	if c.palette.Open == open {
		return
	}
	c.palette.Open = open
	state := c.palette
	c.bus.Publish(Event{Type: EventPalette, Palette: &state})
}

// State returns the whole desktop picture
func (c *Controller) State(ctx context.Context) (State, error) {
	var s State
	err := c.loop.Do(ctx, func() {
		s = State{
			Started:    c.started,
			Windows:    c.windows.List(),
			Simulation: c.simulationState(),
			Oracle:     c.oracle,
			Palette:    c.palette,
		}
	})
	return s, err
}

func (c *Controller) rejected(reason string) {
	if c.metrics != nil {
		c.metrics.SimulationRejected(reason)
	}
	c.logger.Info("Simulation launch rejected", zap.String("reason", reason))
}
