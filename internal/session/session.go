// Package session holds the explicitly owned context of one storefront visitor: the
// bearer token, the authenticated user and the auth-check signal.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jafarshop/storefront/internal/domain"
)

type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	token     string
	user      *domain.User
	expiresAt time.Time
	ended     bool

	checkOnce sync.Once
	checked   chan struct{}
}

// New creates a session for token and user. An empty token yields an anonymous session.
// The expiry is read from the token's exp claim; the signature is the backend's to verify.
func New(token string, user *domain.User) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		checked:   make(chan struct{}),
	}
	if token != "" {
		s.setToken(token, user)
	}
	return s
}

// Resume rebuilds a persisted session under its original id. The auth check is
// complete on return.
func Resume(id, token string, user *domain.User) *Session {
	s := New(token, user)
	s.ID = id
	s.MarkChecked()
	return s
}

// NewAnonymous creates a session with no identity and an auth check still pending
func NewAnonymous() *Session {
	return New("", nil)
}

func (s *Session) setToken(token string, user *domain.User) {
	s.token = token
	if user != nil {
		u := *user
		s.user = &u
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.expiresAt = exp.Time
	}
	if s.user == nil {
		s.user = &domain.User{}
	}
	if s.user.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			s.user.ID = sub
		}
	}
	if s.user.Role == "" {
		if role, ok := claims["role"].(string); ok {
			s.user.Role = domain.Role(role)
		}
	}
}

// MarkChecked signals that the initial auth check has completed. Safe to call twice.
func (s *Session) MarkChecked() {
	s.checkOnce.Do(func() { close(s.checked) })
}

// Checked is closed once the auth check has completed
func (s *Session) Checked() <-chan struct{} {
	return s.checked
}

// IsChecked reports whether the auth check has completed
func (s *Session) IsChecked() bool {
	select {
	case <-s.checked:
		return true
	default:
		return false
	}
}

// Authenticated reports whether the session carries a live identity
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked(time.Now())
}

func (s *Session) authenticatedLocked(now time.Time) bool {
	if s.ended || s.token == "" || s.user == nil {
		return false
	}
	return s.expiresAt.IsZero() || now.Before(s.expiresAt)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the authenticated user, or nil
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Role returns the role of the authenticated user, or "" when anonymous
func (s *Session) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticatedLocked(time.Now()) {
		return ""
	}
	return s.user.Role
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// End drops the identity. The auth check stays completed so guards resolve to sign-in.
func (s *Session) End() {
	s.mu.Lock()
	s.ended = true
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.MarkChecked()
}

// Ended reports whether End has been called
func (s *Session) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ended
}
