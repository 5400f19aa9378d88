package session

import (
	"context"
	"sync"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// Store persists at most one pending turn per session token.
// This allows us to swap between in-memory and Redis without changing the
// coordinator's contract.
type Store interface {
	// Get loads the pending turn for a session, or nil when there is none.
	Get(ctx context.Context, sessionID string) (*models.PendingTurn, error)

	// Put stores the pending turn for a session, replacing any existing one.
	Put(ctx context.Context, sessionID string, turn *models.PendingTurn) error

	// Delete removes the pending turn for a session.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore implements Store with an in-process map. Suitable for a
// single instance; use RedisStore when running more than one.
type MemoryStore struct {
	mu    sync.RWMutex
	turns map[string]*models.PendingTurn
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns: make(map[string]*models.PendingTurn),
	}
}

// Get loads the pending turn for a session.
func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*models.PendingTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	turn, ok := m.turns[sessionID]
	if !ok {
		return nil, nil
	}
	// Copy out so the caller can mutate freely before the next Put.
	out := *turn
	out.Collected = turn.Collected.Clone()
	out.Required = append([]string{}, turn.Required...)
	out.Optional = append([]string{}, turn.Optional...)
	return &out, nil
}

// Put stores the pending turn for a session.
func (m *MemoryStore) Put(ctx context.Context, sessionID string, turn *models.PendingTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns[sessionID] = turn
	return nil
}

// Delete removes the pending turn for a session.
func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.turns, sessionID)
	return nil
}
