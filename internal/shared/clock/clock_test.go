package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake()
	var got []string

	f.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	f.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	f.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	f.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, f.Pending())

	f.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 30*time.Millisecond, f.Now())
}

func TestFakeChainedCallbacks(t *testing.T) {
	f := NewFake()
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 5 {
			f.AfterFunc(time.Millisecond, tick)
		}
	}
	f.AfterFunc(time.Millisecond, tick)

	f.Advance(3 * time.Millisecond)
	assert.Equal(t, 3, count)

	f.Advance(time.Second)
	assert.Equal(t, 5, count)
	assert.Zero(t, f.Pending())
}

func TestFakeStop(t *testing.T) {
	f := NewFake()
	fired := false

	timer := f.AfterFunc(time.Millisecond, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	f.Advance(time.Second)
	assert.False(t, fired)
}

func TestStopAfterFire(t *testing.T) {
	f := NewFake()
	timer := f.AfterFunc(0, func() {})
	f.Advance(0)
	assert.False(t, timer.Stop())
}

func TestRealScheduler(t *testing.T) {
	done := make(chan struct{})
	Real{}.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
