package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
)

// ErrLoopStopped is returned for work submitted after the loop stopped
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs tasks one at a time on a single goroutine. Everything that
// mutates desktop state goes through it, so no transition ever observes
// another half-applied. Tasks must not call Do themselves.
type Loop struct {
	tasks  chan func()
	quit   chan struct{}
	done   chan struct{}
	start  sync.Once
	stop   sync.Once
	logger *zap.Logger
}

// NewLoop creates a stopped loop
func NewLoop(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		tasks:  make(chan func(), 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger.Named("loop"),
	}
}

// Start runs the loop on its own goroutine
func (l *Loop) Start() {
	l.start.Do(func() { go l.run() })
}

// Stop ends the loop and waits for the running task to finish. Queued
// tasks that never ran fail with ErrLoopStopped.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.quit) })
	l.start.Do(func() { close(l.done) })
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case task := <-l.tasks:
			task()
		}
	}
}

// Do runs fn on the loop and waits for it. A context that ends before fn
// is accepted aborts the call; once accepted, fn always runs to
// completion.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	var panicked any

	task := func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				panicked = r
				l.logger.Error("Task panicked", zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		fn()
	}

	select {
	case l.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrLoopStopped
	}

	select {
	case <-finished:
	case <-l.done:
		select {
		case <-finished:
		default:
			return ErrLoopStopped
		}
	}
	if panicked != nil {
		return fmt.Errorf("task panicked: %v", panicked)
	}
	return nil
}

// Scheduler returns a scheduler whose callbacks run on the loop. Timing
// comes from base.
func (l *Loop) Scheduler(base clock.Scheduler) clock.Scheduler {
	return clock.SchedulerFunc(func(d time.Duration, fn func()) clock.Timer {
		return base.AfterFunc(d, func() {
			if err := l.Do(context.Background(), fn); err != nil {
				l.logger.Debug("Dropped timer callback", zap.Error(err))
			}
		})
	})
}
