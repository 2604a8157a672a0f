package session

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for operations on a session id that was never created.
var ErrNotFound = errors.New("session not found")

// Registry maps session ids to sessions. Creation is atomic; mutation of a
// single session is serialized by that session's own mutex, so unrelated
// sessions never contend.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, creating it if needed. The bool
// reports whether this call created it.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s := newSession(id, r.now().UTC())
	r.sessions[id] = s
	return s, true
}

// With runs fn while holding the session's lock.
func (r *Registry) With(id string, fn func(*Session) error) error {
	s, ok := r.get(id)
	if !ok {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Lookup returns a consistent snapshot of the session.
func (r *Registry) Lookup(id string) (View, bool) {
	s, ok := r.get(id)
	if !ok {
		return View{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.View(), true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}
