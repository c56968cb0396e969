// Package session keeps the principal of logged-in browsers between
// requests. Sessions live in memory and are lost when the process restarts.
// Idle sessions expire, and the oldest session is evicted once MaxSessions
// is reached.
package session

import (
	"container/list"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/debug"
)

// Config holds session store settings.
type Config struct {
	// IdleTimeout expires sessions not used for this long (default: 30m).
	IdleTimeout time.Duration

	// MaxSessions bounds the number of live sessions (default: 10000).
	MaxSessions int

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

func (c *Config) defaults() {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 10000
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// entry holds a session principal and its bookkeeping.
type entry struct {
	principal *auth.Principal
	lastUsed  time.Time
	lruElem   *list.Element // position in LRU list
}

// Store is an in-memory session store, safe for concurrent use.
type Store struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry
	lruList *list.List // front = most recently used, back = least recently used
}

// New creates a session store.
func New(cfg Config) *Store {
	cfg.defaults()
	return &Store{
		cfg:     cfg,
		entries: make(map[string]*entry),
		lruList: list.New(),
	}
}

// Create starts a new session holding p and returns its identifier.
func (s *Store) Create(p *auth.Principal) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.cfg.MaxSessions {
		s.evictOldest()
	}

	elem := s.lruList.PushFront(id)
	s.entries[id] = &entry{
		principal: clonePrincipal(p),
		lastUsed:  s.cfg.Now(),
		lruElem:   elem,
	}

	debug.Log("session", "session created", "username", p.Username)
	return id
}

// Get returns the session principal and refreshes the idle timer.
// Unknown and expired sessions report false.
func (s *Store) Get(id string) (*auth.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}

	now := s.cfg.Now()
	if now.Sub(e.lastUsed) >= s.cfg.IdleTimeout {
		s.remove(id, e)
		debug.Log("session", "session expired", "username", e.principal.Username)
		return nil, false
	}

	e.lastUsed = now
	s.lruList.MoveToFront(e.lruElem)
	return clonePrincipal(e.principal), true
}

// Invalidate removes a session. Unknown identifiers are ignored.
func (s *Store) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		s.remove(id, e)
	}
}

// Len returns the number of stored sessions, including expired ones not
// yet collected.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IdleTimeout returns the configured idle timeout.
func (s *Store) IdleTimeout() time.Duration {
	return s.cfg.IdleTimeout
}

// evictOldest removes the least recently used session. Caller holds mu.
func (s *Store) evictOldest() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	s.remove(id, s.entries[id])
}

// remove deletes a session. Caller holds mu.
func (s *Store) remove(id string, e *entry) {
	s.lruList.Remove(e.lruElem)
	delete(s.entries, id)
}

func clonePrincipal(p *auth.Principal) *auth.Principal {
	return &auth.Principal{
		Username:    p.Username,
		Authorities: slices.Clone(p.Authorities),
	}
}
