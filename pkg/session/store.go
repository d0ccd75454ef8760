// Package session tracks authenticated operator sessions and ties each one
// to its cached administrator credential.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL  = 12 * time.Hour
	DefaultIdle = time.Hour
)

// Session is an authenticated caller.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps sessions in memory. A session ends at ExpiresAt or after Idle
// without a Get, whichever comes first.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	idle     time.Duration
	onEvict  func(id string)
	now      func() time.Time
}

// NewStore creates a Store. Non-positive durations take the defaults.
func NewStore(ttl, idle time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Store{
		sessions: make(map[string]Session),
		ttl:      ttl,
		idle:     idle,
		now:      time.Now,
	}
}

// OnEvict registers fn to be called with the ID of every session that is
// deleted or expires. fn runs without the store lock held.
func (s *Store) OnEvict(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// Create starts a new session.
func (s *Store) Create() Session {
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the live session for id and marks it as seen.
func (s *Store) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		evict := s.onEvict
		s.mu.Unlock()
		if evict != nil {
			evict(id)
		}
		return Session{}, false
	}
	sess.LastSeen = now
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess, true
}

// Delete ends the session. It reports whether one existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	evict := s.onEvict
	s.mu.Unlock()

	if evict != nil {
		evict(id)
	}
	return ok
}

// Purge removes expired sessions and returns how many were removed.
func (s *Store) Purge() int {
	now := s.now()

	s.mu.Lock()
	var gone []string
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			gone = append(gone, id)
		}
	}
	evict := s.onEvict
	s.mu.Unlock()

	if evict != nil {
		for _, id := range gone {
			evict(id)
		}
	}
	return len(gone)
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(sess Session, now time.Time) bool {
	return !now.Before(sess.ExpiresAt) || now.Sub(sess.LastSeen) >= s.idle
}
