package admission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire(t *testing.T) {
	t.Run("AdmitsUpToLimit", func(t *testing.T) {
		l := New(5)

		for i := 0; i < 5; i++ {
			require.True(t, l.TryAcquire(), "slot %d should be free", i)
		}
		assert.False(t, l.TryAcquire())
		assert.Equal(t, 5, l.InFlight())
	})

	t.Run("ReleaseFreesSlot", func(t *testing.T) {
		l := New(1)

		require.True(t, l.TryAcquire())
		require.False(t, l.TryAcquire())

		l.Release()
		assert.True(t, l.TryAcquire())
	})

	t.Run("ZeroLimitRejectsEverything", func(t *testing.T) {
		l := New(0)
		assert.False(t, l.TryAcquire())
	})
}

func TestRelease(t *testing.T) {
	t.Run("PanicsWithoutAcquire", func(t *testing.T) {
		l := New(3)
		assert.Panics(t, func() { l.Release() })
	})
}

// TestConcurrentAcquire hammers the limiter from many goroutines and checks
// that admissions never exceed the limit and the counter drains to zero.
func TestConcurrentAcquire(t *testing.T) {
	const (
		limit      = 5
		goroutines = 64
		rounds     = 200
	)

	l := New(limit)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxSeen := 0

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if !l.TryAcquire() {
					continue
				}
				inFlight := l.InFlight()
				mu.Lock()
				if inFlight > maxSeen {
					maxSeen = inFlight
				}
				mu.Unlock()
				l.Release()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxSeen, limit)
	assert.Equal(t, 0, l.InFlight())
}

// TestExactAdmissionCount verifies that with N simultaneous holders and
// N > limit, exactly limit acquisitions succeed.
func TestExactAdmissionCount(t *testing.T) {
	const (
		limit   = 5
		callers = 8
	)

	l := New(limit)

	var wg sync.WaitGroup
	results := make(chan bool, callers)
	hold := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := l.TryAcquire()
			results <- ok
			if ok {
				<-hold
				l.Release()
			}
		}()
	}

	admitted := 0
	for i := 0; i < callers; i++ {
		if <-results {
			admitted++
		}
	}
	close(hold)
	wg.Wait()

	assert.Equal(t, limit, admitted)
	assert.Equal(t, 0, l.InFlight())
}
