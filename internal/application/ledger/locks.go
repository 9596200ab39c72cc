package ledger

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// entityLocks serializes operations per aggregate. Each order and each
// credit note gets its own mutex so a balance check and its write are
// one indivisible unit against other requests touching the same entity.
type entityLocks struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
	key  string
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*entityLock)}
}

func (l *entityLocks) acquire(key string) *entityLock {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &entityLock{key: key}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (l *entityLocks) release(lock *entityLock) {
	lock.mu.Unlock()

	l.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, lock.key)
	}
	l.mu.Unlock()
}

func orderLockKey(id uuid.UUID) string {
	return "order:" + id.String()
}

func noteLockKey(id uuid.UUID) string {
	return "note:" + id.String()
}

// acquireMany takes every key in lexicographic order so concurrent
// requests over overlapping sets never deadlock. Credit note keys sort
// before order keys, which preserves the note-before-order convention
// for the combined installment operation.
func (l *entityLocks) acquireMany(keys []string) []*entityLock {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			sorted = append(sorted, key)
		}
	}
	sort.Strings(sorted)

	held := make([]*entityLock, 0, len(sorted))
	for _, key := range sorted {
		held = append(held, l.acquire(key))
	}
	return held
}

func (l *entityLocks) releaseMany(held []*entityLock) {
	for i := len(held) - 1; i >= 0; i-- {
		l.release(held[i])
	}
}
