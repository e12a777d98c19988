package symbolic

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Store wraps a Backend with graph-traversal operations (shortest path,
// connected components, bounded-depth neighbor expansion) that don't belong
// in a storage backend's own interface.
type Store struct {
	backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) AddNode(label string, properties map[string]string) (Node, error) {
	n, err := s.backend.AddNode(label, properties)
	if err != nil {
		return Node{}, fmt.Errorf("symbolic: add node: %w", err)
	}
	return n, nil
}

func (s *Store) GetNode(id uuid.UUID) (Node, bool, error) { return s.backend.GetNode(id) }

func (s *Store) UpdateProperty(id uuid.UUID, key, value string) (bool, error) {
	return s.backend.UpdateProperty(id, key, value)
}

func (s *Store) RemoveNode(id uuid.UUID) (bool, error) { return s.backend.RemoveNode(id) }

func (s *Store) AddEdge(from, to uuid.UUID, relation string) error {
	return s.backend.AddEdge(from, to, relation)
}

// Neighbors returns the nodes reachable by a single outgoing edge from id,
// optionally filtered by relation ("" matches any relation).
func (s *Store) Neighbors(id uuid.UUID, relation string) ([]Node, error) {
	edges, err := s.backend.EdgesFrom(id, relation)
	if err != nil {
		return nil, err
	}
	var out []Node
	for _, e := range edges {
		n, ok, err := s.backend.GetNode(e.To)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) FindByLabel(label string) ([]Node, error)       { return s.backend.FindByLabel(label) }
func (s *Store) FindByProperty(k, v string) ([]Node, error)     { return s.backend.FindByProperty(k, v) }
func (s *Store) AllNodes() ([]Node, error)                      { return s.backend.AllNodes() }
func (s *Store) AllEdges() ([]Edge, error)                      { return s.backend.AllEdges() }
func (s *Store) Close() error                                   { return s.backend.Close() }

// ShortestPath returns the sequence of node ids from start to end along the
// fewest hops of directed edges, via breadth-first search. ok is false if
// no path exists.
func (s *Store) ShortestPath(start, end uuid.UUID) ([]uuid.UUID, bool, error) {
	if start == end {
		return []uuid.UUID{start}, true, nil
	}
	visited := map[uuid.UUID]bool{start: true}
	prev := map[uuid.UUID]uuid.UUID{}
	queue := []uuid.UUID{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		edges, err := s.backend.EdgesFrom(cur, "")
		if err != nil {
			return nil, false, err
		}
		for _, e := range edges {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			prev[e.To] = cur
			if e.To == end {
				return reconstructPath(prev, start, end), true, nil
			}
			queue = append(queue, e.To)
		}
	}
	return nil, false, nil
}

func reconstructPath(prev map[uuid.UUID]uuid.UUID, start, end uuid.UUID) []uuid.UUID {
	path := []uuid.UUID{end}
	cur := end
	for cur != start {
		cur = prev[cur]
		path = append(path, cur)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ConnectedComponents partitions the nodes by BFS over outgoing edges only,
// not a reverse/undirected traversal: each component is a start node plus
// every not-yet-grouped node reachable from it. Nodes with no incoming edge
// are used as start nodes before any other node.
func (s *Store) ConnectedComponents() ([][]uuid.UUID, error) {
	nodes, err := s.backend.AllNodes()
	if err != nil {
		return nil, err
	}
	edges, err := s.backend.AllEdges()
	if err != nil {
		return nil, err
	}
	adjacency := make(map[uuid.UUID][]uuid.UUID)
	hasIncoming := make(map[uuid.UUID]bool)
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		hasIncoming[e.To] = true
	}
	starts := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		if !hasIncoming[n.ID] {
			starts = append(starts, n.ID)
		}
	}
	for _, n := range nodes {
		if hasIncoming[n.ID] {
			starts = append(starts, n.ID)
		}
	}

	visited := make(map[uuid.UUID]bool)
	var components [][]uuid.UUID
	for _, id := range starts {
		if visited[id] {
			continue
		}
		var component []uuid.UUID
		queue := []uuid.UUID{id}
		visited[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, next := range adjacency[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		components = append(components, component)
	}
	return components, nil
}

// NeighborsDepth returns every node reachable from id within depth directed
// hops, excluding id itself.
func (s *Store) NeighborsDepth(id uuid.UUID, depth int) ([]uuid.UUID, error) {
	if depth <= 0 {
		return nil, nil
	}
	visited := map[uuid.UUID]bool{id: true}
	frontier := []uuid.UUID{id}
	var result []uuid.UUID

	for d := 0; d < depth; d++ {
		var next []uuid.UUID
		for _, cur := range frontier {
			edges, err := s.backend.EdgesFrom(cur, "")
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if !visited[e.To] {
					visited[e.To] = true
					result = append(result, e.To)
					next = append(next, e.To)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return result, nil
}

// AssertGraphInvariants panics if any edge references a node id that does
// not exist, matching the teacher's assert_*-panics-on-violation style for
// internal consistency checks (e.g. modules/procedural_cache.rs).
func (s *Store) AssertGraphInvariants() {
	nodes, err := s.backend.AllNodes()
	if err != nil {
		panic(fmt.Sprintf("symbolic: cannot enumerate nodes for invariant check: %v", err))
	}
	ids := make(map[uuid.UUID]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	edges, err := s.backend.AllEdges()
	if err != nil {
		panic(fmt.Sprintf("symbolic: cannot enumerate edges for invariant check: %v", err))
	}
	for _, e := range edges {
		if !ids[e.From] || !ids[e.To] {
			panic(fmt.Sprintf("symbolic: dangling edge %+v references a removed node", e))
		}
	}
	slog.Debug("[symbolic] graph invariants held", "nodes", len(nodes), "edges", len(edges))
}
