package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/repository"
)

// MemStore is an in-memory home store for unit tests. It mirrors the
// repository contract, including its sentinel errors and newest-first
// list ordering.
type MemStore struct {
	mu    sync.Mutex
	homes map[string]*model.Home

	// FailWith, when set, is returned by every method.
	FailWith error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{homes: make(map[string]*model.Home)}
}

// Seed inserts homes directly, bypassing error injection.
func (m *MemStore) Seed(homes ...*model.Home) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range homes {
		cp := *h
		m.homes[h.ID] = &cp
	}
}

func (m *MemStore) CreateHome(ctx context.Context, home *model.Home) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *home
	m.homes[home.ID] = &cp
	return nil
}

func (m *MemStore) GetHomeByID(ctx context.Context, id string) (*model.Home, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.homes[id]
	if !ok {
		return nil, repository.ErrHomeNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *MemStore) ListHomes(ctx context.Context) ([]*model.Home, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*model.Home) bool { return true }), nil
}

func (m *MemStore) ListHomesByOwner(ctx context.Context, ownerID string) ([]*model.Home, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(h *model.Home) bool { return h.OwnerID == ownerID }), nil
}

func (m *MemStore) ListHomeIDs(ctx context.Context) ([]string, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.homes))
	for _, h := range m.sorted(func(*model.Home) bool { return true }) {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (m *MemStore) UpdateHome(ctx context.Context, home *model.Home) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.homes[home.ID]; !ok {
		return repository.ErrHomeNotFound
	}
	cp := *home
	m.homes[home.ID] = &cp
	return nil
}

func (m *MemStore) DeleteHome(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.homes[id]; !ok {
		return repository.ErrHomeNotFound
	}
	delete(m.homes, id)
	return nil
}

// Len reports how many homes the store holds.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.homes)
}

// sorted returns matching homes newest first, ties broken by id
// descending, matching the repository's ORDER BY.
func (m *MemStore) sorted(match func(*model.Home) bool) []*model.Home {
	out := make([]*model.Home, 0, len(m.homes))
	for _, h := range m.homes {
		if match(h) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
