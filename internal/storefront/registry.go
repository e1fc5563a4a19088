package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMaxSessions = 1000

// Registry creates sessions on first use and keeps at most limit of them, evicting the one idle
// the longest.
type Registry struct {
	deps  Deps
	limit int
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps, limit int) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMaxSessions
	}
	return &Registry{
		deps:     deps,
		limit:    limit,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// NewSessionID returns a fresh time-ordered session id.
func NewSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Get returns the session for id, building and mounting it on first use. Mount failures are
// logged by the session and do not fail the lookup.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}

	if s, ok := r.lookup(id); ok {
		return s, nil
	}

	// Mounting may reach the remote API, so it runs outside the lock.
	s, err := NewSession(r.deps, id)
	if err != nil {
		return nil, err
	}
	_ = s.Mount(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		existing.touch(r.now())
		return existing, nil
	}
	s.touch(r.now())
	if len(r.sessions) >= r.limit {
		r.evictLocked()
	}
	r.sessions[id] = s
	r.deps.Metrics.SetActiveSessions(len(r.sessions))
	return s, nil
}

func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Forget drops a session from memory. Its persisted records stay in the store.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	r.deps.Metrics.SetActiveSessions(len(r.sessions))
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) evictLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, s := range r.sessions {
		idle := s.idleSince()
		if oldestID == "" || idle.Before(oldest) {
			oldestID, oldest = id, idle
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
	}
}
