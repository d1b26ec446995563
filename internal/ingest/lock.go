package ingest

import (
	"fmt"
	"sync"

	"github.com/albapepper/diamondstats/internal/model"
)

// runLocks serializes ingestion per (domain, year) within this process.
// Concurrent runs of the same pair would both see "not completed", both
// create batches, and leave inconsistent bookkeeping; the store's upsert
// idempotency alone does not make that race harmless. Cross-process mutual
// exclusion is explicitly the caller's responsibility.
type runLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var locks = &runLocks{locks: make(map[string]*sync.Mutex)}

func lockKey(domain model.Domain, year int) string {
	return fmt.Sprintf("%s:%d", domain, year)
}

// acquire blocks until the (domain, year) lock is held and returns the
// release function.
func (r *runLocks) acquire(domain model.Domain, year int) func() {
	key := lockKey(domain, year)

	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
