package session

import (
	"context" // Backend interface
	"sync"    // Mutex for the entry map
	"time"    // Expiry checks
)

// MemoryBackend keeps sessions in process memory. Sessions are lost on restart.
type MemoryBackend struct {
	mu      sync.Mutex       // Guards entries
	entries map[string]Entry // Keyed by token
	now     func() time.Time // Clock, replaced in tests
}

// NewMemoryBackend creates an empty in-process store
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry), now: time.Now}
}

// sweep drops expired entries; callers hold mu
func (b *MemoryBackend) sweep(now time.Time) {
	for token, e := range b.entries {
		if !now.Before(e.ExpiresAt) {
			delete(b.entries, token)
		}
	}
}

// Put stores entry under token, dropping expired entries first
func (b *MemoryBackend) Put(_ context.Context, token string, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweep(b.now()) // Lazy cleanup on write
	b.entries[token] = entry
	return nil
}

// Touch moves the expiry of a live entry to expiresAt
func (b *MemoryBackend) Touch(_ context.Context, token string, expiresAt time.Time) (Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweep(b.now())
	e, ok := b.entries[token]
	if !ok {
		return Entry{}, ErrNotFound // Never created or swept
	}
	e.ExpiresAt = expiresAt // Sliding expiry
	b.entries[token] = e
	return e, nil
}

// Replace swaps the entry of a live session; unknown or expired tokens give ErrNotFound
func (b *MemoryBackend) Replace(_ context.Context, token string, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[token]
	if !ok || !b.now().Before(e.ExpiresAt) {
		return ErrNotFound
	}
	b.entries[token] = entry
	return nil
}

// Delete forgets token
func (b *MemoryBackend) Delete(_ context.Context, token string) error {
	b.mu.Lock()
	delete(b.entries, token)
	b.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
