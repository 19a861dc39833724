// Package session keeps server-side login sessions keyed by opaque tokens.
package session

import (
	"context" // Context for backend calls
	"errors"  // Sentinel errors
	"time"    // Expiry handling

	"restaurant_system/internal/domain" // User snapshot type

	"github.com/google/uuid" // Random session tokens
)

// DefaultTTL is the sliding lifetime of a session
const DefaultTTL = 12 * time.Hour

// ErrNotFound is returned by backends for unknown or expired tokens
var ErrNotFound = errors.New("session not found")

// Entry is what a backend stores per token
type Entry struct {
	User      domain.PublicUser `json:"user"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Backend stores session entries. Implementations must treat expired entries as absent.
type Backend interface {
	Put(ctx context.Context, token string, entry Entry) error
	// Touch returns the entry and moves its expiry to expiresAt
	Touch(ctx context.Context, token string, expiresAt time.Time) (Entry, error)
	// Replace overwrites an existing entry only; ErrNotFound otherwise
	Replace(ctx context.Context, token string, entry Entry) error
	Delete(ctx context.Context, token string) error
}

// Manager creates, resolves and revokes sessions
type Manager struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

// NewManager creates a manager; a non-positive ttl means DefaultTTL
func NewManager(backend Backend, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{backend: backend, ttl: ttl, now: time.Now}
}

// TTL is the sliding lifetime applied to every session
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create starts a session for user and returns its token
func (m *Manager) Create(ctx context.Context, user domain.PublicUser) (string, error) {
	token := uuid.NewString()
	if err := m.backend.Put(ctx, token, Entry{User: user, ExpiresAt: m.now().Add(m.ttl)}); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user of a live session and extends its expiry.
// ok is false for an empty, unknown or expired token.
func (m *Manager) Resolve(ctx context.Context, token string) (domain.PublicUser, bool, error) {
	if token == "" {
		return domain.PublicUser{}, false, nil
	}
	entry, err := m.backend.Touch(ctx, token, m.now().Add(m.ttl))
	if errors.Is(err, ErrNotFound) {
		return domain.PublicUser{}, false, nil
	}
	if err != nil {
		return domain.PublicUser{}, false, err
	}
	return entry.User, true, nil
}

// Revoke ends a session; unknown tokens are ignored
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.backend.Delete(ctx, token)
}

// Refresh replaces the user snapshot of a live session, e.g. after a profile change.
// A missing session is not recreated.
func (m *Manager) Refresh(ctx context.Context, token string, user domain.PublicUser) error {
	if token == "" {
		return nil
	}
	err := m.backend.Replace(ctx, token, Entry{User: user, ExpiresAt: m.now().Add(m.ttl)})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
