package httpapi

import (
	"sync"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// entry serializes access to one session.
type entry struct {
	mu       sync.Mutex
	session  *quiz.Session
	lastUsed time.Time
}

type registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*entry)}
}

func (r *registry) add(s *quiz.Session) {
	r.mu.Lock()
	r.sessions[s.ID] = &entry{session: s, lastUsed: time.Now()}
	r.mu.Unlock()
}

// with runs fn while holding the session's lock.
func (r *registry) with(id string, fn func(s *quiz.Session) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return errSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = time.Now()
	return fn(e.session)
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// sweep drops sessions idle for longer than ttl and returns how many it removed.
func (r *registry) sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
