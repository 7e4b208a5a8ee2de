package terminal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
)

type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	exits     int
	outcomes  []Outcome
}

func (r *recorder) options(sched clock.Scheduler) Options {
	return Options{
		Scheduler: sched,
		Timings:   DefaultTimings(),
		OnChange: func(s Snapshot) {
			r.mu.Lock()
			r.snapshots = append(r.snapshots, s)
			r.mu.Unlock()
		},
		OnExit: func() {
			r.mu.Lock()
			r.exits++
			r.mu.Unlock()
		},
		OnCommand: func(o Outcome) {
			r.mu.Lock()
			r.outcomes = append(r.outcomes, o)
			r.mu.Unlock()
		},
	}
}

func intPtr(v int) *int { return &v }

func networkScript() Script {
	return Script{
		Scenario: "A small business network is experiencing unusual traffic.",
		Steps: []Step{
			{Pattern: "help", Output: Output{"Available commands:", "scan <ip>", "exit"}},
			{Pattern: "scan <ip>", Output: Output{"Scanning... Found open ports: 22, 80"}},
		},
	}
}

// bannerDuration is the time from Start until the session becomes idle
func bannerDuration() time.Duration {
	t := DefaultTimings()
	return t.BannerPause + time.Duration(len([]rune(HelpHint)))*t.TypeInterval
}

func startedSession(t *testing.T, script Script) (*Session, *clock.Fake, *recorder) {
	t.Helper()

	program, err := Compile(script)
	require.NoError(t, err)

	fake := clock.NewFake()
	rec := &recorder{}
	s := NewSession(program, rec.options(fake))
	s.Start()
	fake.Advance(bannerDuration())
	require.Equal(t, StateIdle, s.Snapshot().State)
	return s, fake, rec
}

func TestBannerTypewriter(t *testing.T) {
	program, err := Compile(networkScript())
	require.NoError(t, err)

	fake := clock.NewFake()
	s := NewSession(program, Options{Scheduler: fake})
	s.Start()

	snap := s.Snapshot()
	assert.Equal(t, []string{"Scenario: A small business network is experiencing unusual traffic."}, snap.Lines)
	assert.Equal(t, StateBanner, snap.State)
	assert.False(t, snap.AwaitingInput)

	fake.Advance(time.Second)
	snap = s.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "T", snap.Lines[1])

	fake.Advance(4 * 20 * time.Millisecond)
	assert.Equal(t, "Type ", s.Snapshot().Lines[1])

	fake.Advance(time.Duration(len(HelpHint)) * 20 * time.Millisecond)
	snap = s.Snapshot()
	assert.Equal(t, HelpHint, snap.Lines[1])
	assert.Equal(t, StateIdle, snap.State)
	assert.True(t, snap.AwaitingInput)
}

func TestInputIgnoredDuringBanner(t *testing.T) {
	program, err := Compile(networkScript())
	require.NoError(t, err)

	fake := clock.NewFake()
	s := NewSession(program, Options{Scheduler: fake})
	s.Start()

	assert.False(t, s.Submit("help"))
	fake.Advance(time.Second + 100*time.Millisecond)
	assert.False(t, s.Submit("help"), "still typing")
	assert.Len(t, s.Snapshot().Lines, 2)
}

func TestScanScenario(t *testing.T) {
	s, fake, rec := startedSession(t, networkScript())
	base := len(s.Snapshot().Lines)

	require.True(t, s.Submit("scan 192.168.1.10"))
	snap := s.Snapshot()
	assert.Equal(t, "> scan 192.168.1.10", snap.Lines[base])
	assert.Equal(t, StateProcessing, snap.State)
	assert.False(t, snap.AwaitingInput)

	fake.Advance(499 * time.Millisecond)
	assert.Len(t, s.Snapshot().Lines, base+1)

	fake.Advance(time.Millisecond)
	snap = s.Snapshot()
	assert.Equal(t, "Scanning... Found open ports: 22, 80", snap.Lines[base+1])
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, []Outcome{OutcomeMatched}, rec.outcomes)
}

func TestMultiLineOutput(t *testing.T) {
	s, fake, _ := startedSession(t, networkScript())
	base := len(s.Snapshot().Lines)

	require.True(t, s.Submit("  help  "))
	fake.Advance(time.Second)

	lines := s.Snapshot().Lines[base:]
	assert.Equal(t, []string{"> help", "Available commands:", "scan <ip>", "exit"}, lines)
}

func TestStepDelayOverride(t *testing.T) {
	script := Script{
		Scenario: "slow",
		Steps:    []Step{{Pattern: "deploy", Output: Output{"done"}, DelayMS: intPtr(2000)}},
	}
	s, fake, _ := startedSession(t, script)

	require.True(t, s.Submit("deploy"))
	fake.Advance(1999 * time.Millisecond)
	assert.Equal(t, StateProcessing, s.Snapshot().State)

	fake.Advance(time.Millisecond)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestOnlyOneCommandInFlight(t *testing.T) {
	s, fake, _ := startedSession(t, networkScript())
	base := len(s.Snapshot().Lines)

	require.True(t, s.Submit("help"))
	assert.False(t, s.Submit("scan 1.2.3.4"))
	fake.Advance(time.Second)

	lines := s.Snapshot().Lines[base:]
	assert.Equal(t, "> help", lines[0])
	assert.NotContains(t, lines, "> scan 1.2.3.4")
}

func TestBlankInputIgnored(t *testing.T) {
	s, _, _ := startedSession(t, networkScript())
	before := s.Snapshot()

	assert.False(t, s.Submit("   "))
	assert.Equal(t, before.Lines, s.Snapshot().Lines)
}

func TestCommandNotFound(t *testing.T) {
	s, fake, rec := startedSession(t, Script{Scenario: "empty"})
	base := len(s.Snapshot().Lines)

	require.True(t, s.Submit("rm -rf /"))
	fake.Advance(500 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, []string{"> rm -rf /", "Command not found: rm -rf /. Type 'help' for available commands."}, snap.Lines[base:])
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, []Outcome{OutcomeNotFound}, rec.outcomes)
}

func TestFirstMatchWins(t *testing.T) {
	script := Script{
		Scenario: "ordering",
		Steps: []Step{
			{Pattern: "scan <target>", Output: Output{"generic scan"}},
			{Pattern: "scan 10.0.0.1", Output: Output{"specific scan"}},
		},
	}
	s, fake, _ := startedSession(t, script)

	require.True(t, s.Submit("scan 10.0.0.1"))
	fake.Advance(time.Second)

	lines := s.Snapshot().Lines
	assert.Equal(t, "generic scan", lines[len(lines)-1])
}

func TestExitPrecedence(t *testing.T) {
	script := Script{
		Scenario: "exit shadowing",
		Steps:    []Step{{Pattern: "EXIT", Output: Output{"scripted exit"}}},
	}
	s, fake, rec := startedSession(t, script)

	require.True(t, s.Submit("EXIT"))
	snap := s.Snapshot()
	assert.Equal(t, ExitMessage, snap.Lines[len(snap.Lines)-1])
	assert.Equal(t, StateExited, snap.State)
	assert.True(t, snap.Exited)
	assert.False(t, s.Submit("help"))

	fake.Advance(999 * time.Millisecond)
	assert.Zero(t, rec.exits)

	fake.Advance(time.Millisecond)
	assert.Equal(t, 1, rec.exits)
	assert.True(t, s.Closed())
	assert.NotContains(t, s.Snapshot().Lines, "scripted exit")
	assert.Equal(t, []Outcome{OutcomeExit}, rec.outcomes)
}

func TestNoMutationAfterCloseWhileProcessing(t *testing.T) {
	s, fake, rec := startedSession(t, networkScript())

	require.True(t, s.Submit("scan 10.0.0.2"))
	before := s.Snapshot()
	notified := len(rec.snapshots)

	s.Close()
	fake.Advance(time.Hour)

	assert.Equal(t, before.Lines, s.Snapshot().Lines)
	assert.Len(t, rec.snapshots, notified)
	assert.Zero(t, fake.Pending())
	assert.False(t, s.Submit("help"))
}

func TestNoMutationAfterCloseMidTypewriter(t *testing.T) {
	program, err := Compile(networkScript())
	require.NoError(t, err)

	fake := clock.NewFake()
	s := NewSession(program, Options{Scheduler: fake})
	s.Start()
	fake.Advance(time.Second + 60*time.Millisecond)
	before := s.Snapshot().Lines

	s.Close()
	fake.Advance(time.Hour)

	assert.Equal(t, before, s.Snapshot().Lines)
	assert.True(t, s.Snapshot().Exited)
}

func TestCloseDuringExitGraceSuppressesSignal(t *testing.T) {
	s, fake, rec := startedSession(t, networkScript())

	require.True(t, s.Submit("exit"))
	s.Close()
	fake.Advance(time.Hour)

	assert.Zero(t, rec.exits)
}

func TestStartIsIdempotent(t *testing.T) {
	s, _, _ := startedSession(t, networkScript())
	lines := s.Snapshot().Lines

	s.Start()
	assert.Equal(t, lines, s.Snapshot().Lines)
}

// Closing at an arbitrary point and then running every timer never grows
// the transcript.
func TestProperty_NoPostTeardownMutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		program, err := Compile(networkScript())
		if err != nil {
			rt.Fatal(err)
		}
		fake := clock.NewFake()
		s := NewSession(program, Options{Scheduler: fake})
		s.Start()

		commands := []string{"help", "scan 1.1.1.1", "nope", "exit"}
		steps := rapid.IntRange(0, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(rt, "submit") {
				s.Submit(rapid.SampledFrom(commands).Draw(rt, "command"))
			}
			fake.Advance(time.Duration(rapid.IntRange(0, 1500).Draw(rt, "advance")) * time.Millisecond)
		}

		s.Close()
		before := s.Snapshot().Lines
		fake.Advance(time.Hour)
		after := s.Snapshot().Lines

		if len(before) != len(after) {
			rt.Fatalf("transcript grew after close: %d -> %d", len(before), len(after))
		}
	})
}
