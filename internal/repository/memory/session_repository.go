package memory

import (
	"sync"
	"time"

	"loan-origination-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the process-wide session registry. Records are
// evicted after sitting idle for the configured TTL. Lock serializes turns
// per session id so a session is never mutated by two overlapping turns,
// while unrelated sessions proceed in parallel.
type SessionRepository struct {
	cache *cache.Cache
	locks sync.Map // session id -> *sync.Mutex
}

// NewSessionRepository creates a registry whose entries expire after ttl of
// inactivity and are purged every sweepInterval.
func NewSessionRepository(ttl, sweepInterval time.Duration) *SessionRepository {
	c := cache.New(ttl, sweepInterval)
	r := &SessionRepository{cache: c}
	// Drop the lock together with the evicted session so the lock map does
	// not grow unboundedly.
	c.OnEvicted(func(key string, _ interface{}) {
		r.locks.Delete(key)
	})
	return r
}

// Lock acquires the per-session mutex and returns the unlock function.
// Callers hold it for the full duration of a turn.
func (r *SessionRepository) Lock(sessionID string) func() {
	v, _ := r.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Save stores the session and refreshes its idle TTL.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
