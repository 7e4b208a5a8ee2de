package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
}

func TestGenerateMonotonic(t *testing.T) {
	gen := NewGenerator()

	prev := gen.Generate()
	for i := 0; i < 1000; i++ {
		next := gen.Generate()
		require.Equal(t, 1, next.Compare(prev), "ids must sort in generation order")
		prev = next
	}
}

func TestWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SessionPrefix, ConnPrefix, RequestPrefix} {
		s := gen.WithPrefix(prefix)
		assert.True(t, strings.HasPrefix(s, prefix+"_"), s)
		assert.True(t, IsValid(s), s)
	}
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewSessionID().String(), "sim_"))
	assert.True(t, strings.HasPrefix(NewConnID().String(), "conn_"))
	assert.True(t, strings.HasPrefix(NewRequestID().String(), "req_"))
}

func TestSplitRejectsMalformed(t *testing.T) {
	_, _, err := Split("nounderscore")
	assert.Error(t, err)

	_, _, err = Split("sim_not-a-ulid")
	assert.Error(t, err)
	assert.False(t, IsValid("sim_not-a-ulid"))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewSessionID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[SessionID]struct{}, workers*perWorker)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sid := NewSessionID()
				mu.Lock()
				seen[sid] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
