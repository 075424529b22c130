package store

import (
	"context"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

// Memory is a process-local Log used when no database is configured.
type Memory struct {
	mu      sync.Mutex
	records []record.Stored
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) Insert(_ context.Context, source string, r record.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.records = append(m.records, record.Stored{
		ID:        id,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Record:    r,
	})
	return id, nil
}

func (m *Memory) ListAll(_ context.Context) ([]record.Stored, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]record.Stored, len(m.records))
	copy(out, m.records)
	return out, nil
}
