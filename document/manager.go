// Package document tracks the host pages whose text is being read.
package document

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrNameTaken = errors.New("document name already in use")
var ErrNotFound = errors.New("document not found")

type Manager struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document)}
}

func (m *Manager) Create(name string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.docs {
		if d.Name == name {
			return nil, ErrNameTaken
		}
	}

	d := newDocument(uuid.New().String(), name)
	m.docs[d.ID] = d
	return d, nil
}

// List returns documents oldest first.
func (m *Manager) List() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Document, 0, len(m.docs))
	for _, d := range m.docs {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (m *Manager) Get(id string) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	return d, ok
}

// Close removes the document, stops its observer and signals Done.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	d, ok := m.docs[id]
	if ok {
		delete(m.docs, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	d.close()
	return nil
}

// Broadcast sends ev to every connected client.
func (m *Manager) Broadcast(ev Event) {
	for _, d := range m.List() {
		d.Send(ev)
	}
}
