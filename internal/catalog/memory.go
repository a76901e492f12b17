package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/saravn-ent/tamilring/internal/domain"
)

// Memory is an in-process catalog for local development and tests.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]*domain.Ring
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]*domain.Ring)}
}

func (m *Memory) Exists(ctx context.Context, slug string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rows[slug]
	return ok, nil
}

func (m *Memory) Insert(ctx context.Context, ring *domain.Ring) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[ring.Slug]; ok {
		return "", fmt.Errorf("slug already cataloged: %s", ring.Slug)
	}

	stored := *ring
	stored.ID = uuid.NewString()
	m.rows[ring.Slug] = &stored
	return stored.ID, nil
}

// Get returns a stored row, for test assertions.
func (m *Memory) Get(slug string) (*domain.Ring, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ring, ok := m.rows[slug]
	return ring, ok
}
