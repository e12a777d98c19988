package symbolic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStore_ShortestPath(t *testing.T) {
	s := NewStore(NewMemBackend())
	a, _ := s.AddNode("A", nil)
	b, _ := s.AddNode("B", nil)
	c, _ := s.AddNode("C", nil)
	require.NoError(t, s.AddEdge(a.ID, b.ID, "next"))
	require.NoError(t, s.AddEdge(b.ID, c.ID, "next"))

	path, ok, err := s.ShortestPath(a.ID, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{a.ID.String(), b.ID.String(), c.ID.String()}, idStrings(path))
}

func TestStore_ShortestPathNoPath(t *testing.T) {
	s := NewStore(NewMemBackend())
	a, _ := s.AddNode("A", nil)
	b, _ := s.AddNode("B", nil)

	_, ok, err := s.ShortestPath(a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_ConnectedComponents(t *testing.T) {
	s := NewStore(NewMemBackend())
	a, _ := s.AddNode("A", nil)
	b, _ := s.AddNode("B", nil)
	c, _ := s.AddNode("C", nil) // isolated
	require.NoError(t, s.AddEdge(a.ID, b.ID, "rel"))

	components, err := s.ConnectedComponents()
	require.NoError(t, err)
	require.Len(t, components, 2)

	sizes := map[int]int{}
	for _, comp := range components {
		sizes[len(comp)]++
	}
	require.Equal(t, 1, sizes[2])
	require.Equal(t, 1, sizes[1])
	_ = c
}

func TestStore_NeighborsDepth(t *testing.T) {
	s := NewStore(NewMemBackend())
	a, _ := s.AddNode("A", nil)
	b, _ := s.AddNode("B", nil)
	c, _ := s.AddNode("C", nil)
	require.NoError(t, s.AddEdge(a.ID, b.ID, "rel"))
	require.NoError(t, s.AddEdge(b.ID, c.ID, "rel"))

	within1, err := s.NeighborsDepth(a.ID, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{b.ID.String()}, idStrings(within1))

	within2, err := s.NeighborsDepth(a.ID, 2)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{b.ID.String(), c.ID.String()}, idStrings(within2))
}

// After remove_node(v), no edge in the graph may reference v, per spec §8.
func TestStore_AssertGraphInvariants_HoldsAfterRemoval(t *testing.T) {
	s := NewStore(NewMemBackend())
	a, _ := s.AddNode("A", nil)
	b, _ := s.AddNode("B", nil)
	require.NoError(t, s.AddEdge(a.ID, b.ID, "rel"))

	_, err := s.RemoveNode(b.ID)
	require.NoError(t, err)

	require.NotPanics(t, func() { s.AssertGraphInvariants() })
}

func TestStore_AssertGraphInvariants_PanicsOnDanglingEdge(t *testing.T) {
	mem := NewMemBackend()
	s := NewStore(mem)
	a, _ := s.AddNode("A", nil)
	b, _ := s.AddNode("B", nil)
	require.NoError(t, s.AddEdge(a.ID, b.ID, "rel"))

	// Bypass RemoveNode's edge cleanup to simulate a corrupted backend.
	delete(mem.nodes, b.ID)

	require.Panics(t, func() { s.AssertGraphInvariants() })
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
