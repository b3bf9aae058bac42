package auth

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	username  string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory store whose sessions live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a new token for username.
func (s *MemoryStore) Create(_ context.Context, username string) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = memorySession{username: username, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

// Resolve returns the username bound to token.
func (s *MemoryStore) Resolve(_ context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !s.now().Before(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", false, nil
	}
	return sess.username, true, nil
}

// Destroy removes token.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// DeleteExpired drops every expired session.
func (s *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

// Count returns the number of live sessions. Expired entries awaiting a sweep
// are not counted.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sess := range s.sessions {
		if now.Before(sess.expiresAt) {
			n++
		}
	}
	return n, nil
}
