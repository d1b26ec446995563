package ingest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/diamondstats/internal/model"
)

func TestRunLocksSerializeSamePair(t *testing.T) {
	r := &runLocks{locks: make(map[string]*sync.Mutex)}

	const workers = 8
	const iterations = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				release := r.acquire(model.DomainBatting, 1978)
				counter++
				release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}

func TestRunLocksIndependentPairs(t *testing.T) {
	r := &runLocks{locks: make(map[string]*sync.Mutex)}

	// Holding batting/1978 must not block pitching/1978 or batting/1979.
	release := r.acquire(model.DomainBatting, 1978)
	defer release()

	done := make(chan struct{})
	go func() {
		r.acquire(model.DomainPitching, 1978)()
		r.acquire(model.DomainBatting, 1979)()
		close(done)
	}()
	<-done
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "batting:1978", lockKey(model.DomainBatting, 1978))
	assert.NotEqual(t,
		lockKey(model.DomainBatting, 1978),
		lockKey(model.DomainPitching, 1978),
	)
}
