// Package session tracks who is signed in on a browser session and lets
// workflows react when that changes.
package session

import (
	"sync"
	"time"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/wizard"
)

// Snapshot is the identity state at one moment.
type Snapshot struct {
	Principal *models.Principal `json:"principal"`
	IsAdmin   bool              `json:"is_admin"`
}

func (s Snapshot) SignedIn() bool {
	return s.Principal != nil
}

type Listener func(Snapshot)

type Session struct {
	ID string

	mu        sync.RWMutex
	principal *models.Principal
	isAdmin   bool
	lastSeen  time.Time
	listeners map[int]Listener
	nextID    int
	draft     *wizard.Wizard
}

func New(id string) *Session {
	return &Session{
		ID:        id,
		lastSeen:  time.Now(),
		listeners: make(map[int]Listener),
		draft:     wizard.New(),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	var p *models.Principal
	if s.principal != nil {
		copied := *s.principal
		p = &copied
	}
	return Snapshot{Principal: p, IsAdmin: s.isAdmin}
}

func (s *Session) Principal() *models.Principal {
	return s.Snapshot().Principal
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAdmin
}

// SetIdentity replaces the principal and admin flag. Listeners hear about
// it only when the principal id or the admin flag actually changed.
func (s *Session) SetIdentity(principal *models.Principal, isAdmin bool) {
	if principal == nil {
		isAdmin = false
	}

	s.mu.Lock()
	changed := s.isAdmin != isAdmin || !samePrincipal(s.principal, principal)
	if principal != nil {
		copied := *principal
		s.principal = &copied
	} else {
		s.principal = nil
	}
	s.isAdmin = isAdmin
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	if changed {
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	// Listeners run on their own goroutines so none can block sign-in.
	for _, l := range listeners {
		go l(snap)
	}
}

// Clear signs the session out.
func (s *Session) Clear() {
	s.SetIdentity(nil, false)
}

func samePrincipal(a, b *models.Principal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// Subscribe registers fn for identity changes until the returned func is
// called.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Draft is the application being filled in on this session.
func (s *Session) Draft() *wizard.Wizard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// ResetDraft discards the current draft and starts a new one.
func (s *Session) ResetDraft() *wizard.Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = wizard.New()
	return s.draft
}
