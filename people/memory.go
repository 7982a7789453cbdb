package people

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// MEMORY DIRECTORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	people map[int64]tax.Person
	nextID int64
}

func NewMemory(seed ...tax.Person) *Memory {
	m := &Memory{people: make(map[int64]tax.Person), nextID: 1}
	for _, p := range seed {
		m.saveLocked(p)
	}
	return m
}

func (m *Memory) Get(_ context.Context, id int64) (tax.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.people[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return p, nil
}

func (m *Memory) Save(_ context.Context, p tax.Person) (tax.Person, error) {
	if err := tax.Validate(p); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(p), nil
}

func (m *Memory) saveLocked(p tax.Person) tax.Person {
	id := p.Identification().ID
	if id == 0 {
		id = m.nextID
		p = WithID(p, id)
	}
	if id >= m.nextID {
		m.nextID = id + 1
	}
	m.people[id] = p
	return p
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.people[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(m.people, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]tax.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]tax.Person, 0, len(m.people))
	for _, p := range m.people {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Identification().ID < result[j].Identification().ID
	})
	return result, nil
}

var _ Store = (*Memory)(nil)
