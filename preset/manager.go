package preset

import (
	"context"
	"sort"
	"strings"
	"sync"

	"emotion-panel/store"
)

// Manager reads and writes the presets collection. The whole collection is
// one value in the store; every mutation rewrites it.
type Manager struct {
	mu    sync.RWMutex
	store store.Store
}

func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

func (m *Manager) load(ctx context.Context) (map[string]Preset, error) {
	presets := map[string]Preset{}
	if _, err := store.GetJSON(ctx, m.store, store.KeyPresets, &presets); err != nil {
		return nil, err
	}
	if presets == nil {
		presets = map[string]Preset{}
	}
	for name, p := range presets {
		if p.Name != name {
			p.Name = name
			presets[name] = p
		}
	}
	return presets, nil
}

// All returns a copy of every preset keyed by name.
func (m *Manager) All(ctx context.Context) (map[string]Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load(ctx)
}

// List returns every preset sorted by name.
func (m *Manager) List(ctx context.Context) ([]Preset, error) {
	all, err := m.All(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]Preset, 0, len(all))
	for _, p := range all {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Get returns the preset called name, or ErrNotFound.
func (m *Manager) Get(ctx context.Context, name string) (Preset, error) {
	all, err := m.All(ctx)
	if err != nil {
		return Preset{}, err
	}
	p, ok := all[name]
	if !ok {
		return Preset{}, ErrNotFound
	}
	return p, nil
}

// Exists reports whether a preset called name is stored.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.Get(ctx, name)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// Put creates or overwrites p.Name and reports whether it already existed.
func (m *Manager) Put(ctx context.Context, p Preset) (bool, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return false, ErrEmptyName
	}
	p = p.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	all, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	_, existed := all[p.Name]
	all[p.Name] = p
	return existed, store.SetJSON(ctx, m.store, store.KeyPresets, all)
}

// Delete removes the preset called name, or returns ErrNotFound.
func (m *Manager) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	all, err := m.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[name]; !ok {
		return ErrNotFound
	}
	delete(all, name)
	return store.SetJSON(ctx, m.store, store.KeyPresets, all)
}

// ReplaceAll swaps the whole collection. A nil map empties it.
func (m *Manager) ReplaceAll(ctx context.Context, presets map[string]Preset) error {
	next := make(map[string]Preset, len(presets))
	for name, p := range presets {
		p.Name = name
		next[name] = p.Clone()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return store.SetJSON(ctx, m.store, store.KeyPresets, next)
}
