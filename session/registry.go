package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns the live sessions of this process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	onEvict  []func(*Session)
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// OnEvict registers fn to run for every session EvictIdle removes.
func (r *Registry) OnEvict(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Create() *Session {
	s := New(uuid.NewString())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// GetOrCreate returns the session for id, or a fresh one when id is empty
// or unknown. created reports which happened.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if existing, ok := r.Get(id); ok {
			return existing, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle removes sessions not seen within the TTL and returns how many
// were removed.
func (r *Registry) EvictIdle(now time.Time) int {
	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > r.ttl {
			evicted = append(evicted, s)
			delete(r.sessions, id)
		}
	}
	hooks := append([]func(*Session){}, r.onEvict...)
	r.mu.Unlock()

	for _, s := range evicted {
		for _, hook := range hooks {
			hook(s)
		}
	}
	return len(evicted)
}
