// Package auth provides session-based authentication: session records
// with their cached effective authz, pluggable session stores, the
// session middleware that resolves the request principal, and JWT access
// tokens for non-browser clients.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

// Session-related errors.
var (
	// ErrSessionNotFound is returned when a session is not in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned for sessions past their expiry.
	ErrSessionExpired = errors.New("session expired")
)

// Session is the per-login record cached in the session store. It carries
// the subset of user fields needed on every request plus the resolved
// effective authz, so authenticated requests normally perform no user
// lookup at all.
type Session struct {
	// ID is the opaque session token.
	ID string `json:"id"`

	UserID     string   `json:"user_id"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	SubRole    string   `json:"sub_role,omitempty"`
	Hostel     string   `json:"hostel,omitempty"`
	PinnedTabs []string `json:"pinned_tabs,omitempty"`

	// Effective is the session-cached effective authz. A nil or
	// stale-shaped value triggers a rebuild on the next request.
	Effective *authz.Effective `json:"effective,omitempty"`

	// LegacyPermissions is the flat permission field written by an earlier
	// generation of the system. Its presence marks the session data as
	// legacy-shaped.
	LegacyPermissions map[string]map[string]bool `json:"permissions,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ToPrincipal converts the session to the principal consumed by the
// access-check middleware.
func (s *Session) ToPrincipal() *authz.Principal {
	return &authz.Principal{
		UserID:    s.UserID,
		Email:     s.Email,
		Role:      s.Role,
		SubRole:   s.SubRole,
		Effective: s.Effective,
	}
}

// NewSession creates a session for a user with the resolved effective
// authz and the given lifetime.
func NewSession(user *models.User, effective *authz.Effective, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             generateSessionID(),
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Role,
		SubRole:        user.SubRole,
		Hostel:         user.Hostel,
		PinnedTabs:     user.PinnedTabs,
		Effective:      effective,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
	}
}

// generateSessionID returns a cryptographically random session token.
func generateSessionID() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// rand.Read on supported platforms never fails; fall back to a
		// time-derived token rather than panicking.
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(bytes)
}

// SessionStore is the session storage backend.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID. Returns ErrSessionNotFound if absent
	// and ErrSessionExpired if present but past expiry.
	Get(ctx context.Context, id string) (*Session, error)

	// Update replaces an existing session. Returns ErrSessionNotFound if
	// the session does not exist.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session for a user and returns the
	// count deleted. Used when a role change forces re-authentication.
	DeleteByUserID(ctx context.Context, userID string) (int, error)

	// Touch updates the last-accessed time and extends expiry.
	Touch(ctx context.Context, id string, newExpiry time.Time) error

	// CleanupExpired removes all expired sessions and returns the count.
	CleanupExpired(ctx context.Context) (int, error)
}

// MemorySessionStore is an in-memory SessionStore for development and
// tests. Production uses BadgerSessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

// Create stores a new session.
func (m *MemorySessionStore) Create(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

// Get retrieves a session by ID.
func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	copied := *session
	return &copied, nil
}

// Update replaces an existing session.
func (m *MemorySessionStore) Update(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

// Delete removes a session by ID.
func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteByUserID removes every session for a user.
func (m *MemorySessionStore) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}

// Touch updates the last-accessed time and expiry.
func (m *MemorySessionStore) Touch(ctx context.Context, id string, newExpiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	return nil
}

// CleanupExpired removes all expired sessions.
func (m *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, session := range m.sessions {
		if session.IsExpired() {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}
