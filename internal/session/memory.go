package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spigell/bewatu/internal/network"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory keeps snapshots in process memory. Entries are stored serialized so
// callers never share mutable state through the cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, sessionID string) (*network.Data, error) {
	id, err := validateID(sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	var data network.Data
	if err := json.Unmarshal(entry.payload, &data); err != nil {
		return nil, fmt.Errorf("decode cached session %q: %w", id, err)
	}
	return &data, nil
}

func (m *Memory) Set(_ context.Context, sessionID string, data *network.Data) error {
	id, err := validateID(sessionID)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("session data is required")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{payload: payload, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Clear(_ context.Context, sessionID string) error {
	id, err := validateID(sessionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
