// Package session maps opaque cookie tokens onto user identities. The cart
// API trusts only the cookie; no request body ever carries identity.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cartbridge/internal/domain"
)

type tokenMeta struct {
	UserID    string
	ExpiresAt time.Time
}

// Manager issues and validates session tokens in memory.
type Manager struct {
	mu     sync.RWMutex
	tokens map[string]tokenMeta
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		tokens: make(map[string]tokenMeta),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a new token bound to the given user id.
func (m *Manager) Issue(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	token := uuid.NewString()
	m.mu.Lock()
	m.tokens[token] = tokenMeta{
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.mu.Unlock()
	return token, nil
}

// Resolve returns the user id a token is bound to, or ErrUnauthenticated for
// unknown or expired tokens. Expired tokens are dropped on sight.
func (m *Manager) Resolve(token string) (string, error) {
	m.mu.RLock()
	meta, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	if m.now().After(meta.ExpiresAt) {
		m.mu.Lock()
		delete(m.tokens, token)
		m.mu.Unlock()
		return "", domain.ErrUnauthenticated
	}
	return meta.UserID, nil
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.tokens, token)
	m.mu.Unlock()
}
