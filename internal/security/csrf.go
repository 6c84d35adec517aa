package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// CSRFTokenStore manages per-session CSRF tokens in memory
type CSRFTokenStore struct {
	tokens map[string]csrfToken
	mu     sync.RWMutex
	ttl    time.Duration
}

type csrfToken struct {
	value     string
	expiresAt time.Time
}

// NewCSRFTokenStore creates a new CSRF token store and starts its
// expiry sweep
func NewCSRFTokenStore(ttl time.Duration) *CSRFTokenStore {
	store := &CSRFTokenStore{
		tokens: make(map[string]csrfToken),
		ttl:    ttl,
	}
	go store.cleanupExpired()
	return store
}

// GenerateToken generates and stores a new CSRF token for a session
func (s *CSRFTokenStore) GenerateToken(sessionID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = csrfToken{value: token, expiresAt: time.Now().Add(s.ttl)}

	return token, nil
}

// GetToken returns the current token for a session, minting one if the
// session has none yet
func (s *CSRFTokenStore) GetToken(sessionID string) (string, error) {
	s.mu.RLock()
	tok, exists := s.tokens[sessionID]
	s.mu.RUnlock()

	if exists && time.Now().Before(tok.expiresAt) {
		return tok.value, nil
	}
	return s.GenerateToken(sessionID)
}

// ValidateToken checks a submitted CSRF token against the session's
func (s *CSRFTokenStore) ValidateToken(sessionID, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, exists := s.tokens[sessionID]
	if !exists || time.Now().After(tok.expiresAt) {
		return false
	}
	return tok.value == token
}

// DeleteToken removes a session's token (on logout)
func (s *CSRFTokenStore) DeleteToken(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
}

func (s *CSRFTokenStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for sessionID, tok := range s.tokens {
			if now.After(tok.expiresAt) {
				delete(s.tokens, sessionID)
			}
		}
		s.mu.Unlock()
	}
}
