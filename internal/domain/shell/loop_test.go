package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
)

func TestLoopSerializesTasks(t *testing.T) {
	loop := NewLoop(nil)
	loop.Start()
	defer loop.Stop()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, loop.Do(context.Background(), func() { counter++ }))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestLoopStopped(t *testing.T) {
	loop := NewLoop(nil)
	loop.Start()
	loop.Stop()

	err := loop.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrLoopStopped)
}

func TestLoopStopWithoutStart(t *testing.T) {
	loop := NewLoop(nil)
	assert.NotPanics(t, loop.Stop)
}

func TestLoopContextCancelledBeforeAccept(t *testing.T) {
	loop := NewLoop(nil) // never started, tasks never drained
	for i := 0; i < cap(loop.tasks); i++ {
		loop.tasks <- func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, loop.Do(ctx, func() {}), context.DeadlineExceeded)
}

func TestLoopRecoversPanics(t *testing.T) {
	loop := NewLoop(nil)
	loop.Start()
	defer loop.Stop()

	err := loop.Do(context.Background(), func() { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	assert.NoError(t, loop.Do(context.Background(), func() {}))
}

func TestLoopSchedulerRunsOnLoop(t *testing.T) {
	loop := NewLoop(nil)
	loop.Start()
	defer loop.Stop()

	fake := clock.NewFake()
	sched := loop.Scheduler(fake)

	var order []string
	sched.AfterFunc(time.Second, func() {
		order = append(order, "first")
		sched.AfterFunc(time.Second, func() { order = append(order, "chained") })
	})
	t2 := sched.AfterFunc(1500*time.Millisecond, func() { order = append(order, "stopped") })
	require.True(t, t2.Stop())

	fake.Advance(2 * time.Second)
	require.NoError(t, loop.Do(context.Background(), func() {}))
	assert.Equal(t, []string{"first", "chained"}, order)
}

func TestBusDropsForSlowSubscriber(t *testing.T) {
	bus := NewBus(1, nil)
	events, cancel := bus.Subscribe()

	bus.Publish(Event{Type: EventWindows})
	bus.Publish(Event{Type: EventPalette})

	assert.Equal(t, EventWindows, (<-events).Type)
	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e.Type)
	default:
	}

	assert.Equal(t, 1, bus.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, bus.Subscribers())
	_, ok := <-events
	assert.False(t, ok)
}
