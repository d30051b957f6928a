// Package session holds authenticated sessions in process memory. Tokens
// are opaque and die with the process; a restart logs everyone out.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session stays valid without a new login.
const DefaultTTL = 24 * time.Hour

// Session ties an opaque token to a user until it expires.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Registry manages sessions in memory
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
}

// NewRegistry creates a session registry with the given TTL and starts the
// expiry sweep.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
	// Start cleanup goroutine
	go r.cleanupExpired()
	return r
}

// Create mints a new opaque token for the user.
func (r *Registry) Create(userID string) string {
	token := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.sessions[token] = &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}
	return token
}

// Resolve returns the user id behind a token, if the token is live.
func (r *Registry) Resolve(token string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[token]
	if !exists || s.IsExpired() {
		return "", false
	}
	return s.UserID, true
}

// Destroy removes a token. Destroying an unknown token is a no-op.
func (r *Registry) Destroy(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// DestroyAllForUser removes every session belonging to one user.
func (r *Registry) DestroyAllForUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
		}
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	now := time.Now()
	for _, s := range r.sessions {
		if now.Before(s.ExpiresAt) {
			n++
		}
	}
	return n
}

// cleanupExpired removes expired sessions periodically
func (r *Registry) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for token, s := range r.sessions {
			if now.After(s.ExpiresAt) {
				delete(r.sessions, token)
			}
		}
		r.mu.Unlock()
	}
}
