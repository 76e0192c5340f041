package guidelines

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a Store held in process memory. Search relevance is scored by
// term frequency, so rankings approximate but do not equal the PostgreSQL store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Guideline
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]Guideline)}
}

func (m *MemoryStore) Find(_ context.Context, id uuid.UUID) (Guideline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.items[id]
	if !ok {
		return Guideline{}, ErrNotFound
	}
	return g.clone(), nil
}

func (m *MemoryStore) Query(_ context.Context, q Query) ([]Guideline, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		g     Guideline
		score int
	}

	matches := make([]scored, 0)
	for _, g := range m.items {
		if q.Matches(g) {
			matches = append(matches, scored{g: g, score: q.Relevance(g)})
		}
	}

	slices.SortFunc(matches, func(a, b scored) int {
		if q.Order == OrderRelevance {
			if c := cmp.Compare(b.score, a.score); c != 0 {
				return c
			}
		} else if c := b.g.UpdatedAt.Compare(a.g.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.g.ID.String(), a.g.ID.String())
	})

	total := len(matches)
	start := min(q.Offset(), total)
	end := start + min(max(q.Limit, 0), total-start)

	window := make([]Guideline, 0, end-start)
	for _, s := range matches[start:end] {
		window = append(window, s.g.clone())
	}

	return window, total, nil
}

func (m *MemoryStore) Insert(_ context.Context, g Guideline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[g.ID]; ok {
		return ErrDuplicate
	}
	m.items[g.ID] = g.clone()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, g Guideline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[g.ID]; !ok {
		return ErrNotFound
	}
	m.items[g.ID] = g.clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryStore) Trusts(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trusts := make([]string, 0)
	for _, g := range m.items {
		if g.IsActive && !slices.Contains(trusts, g.TrustName) {
			trusts = append(trusts, g.TrustName)
		}
	}
	slices.Sort(trusts)
	return trusts, nil
}
