package symbolic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemBackend_AddNodeAndEdge(t *testing.T) {
	b := NewMemBackend()
	a, err := b.AddNode("A", nil)
	require.NoError(t, err)
	c, err := b.AddNode("B", nil)
	require.NoError(t, err)
	require.NoError(t, b.AddEdge(a.ID, c.ID, "rel"))

	edges, err := b.EdgesFrom(a.ID, "rel")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, c.ID, edges[0].To)
}

func TestMemBackend_UpdateProperty(t *testing.T) {
	b := NewMemBackend()
	n, err := b.AddNode("A", map[string]string{"k": "v1"})
	require.NoError(t, err)

	ok, err := b.UpdateProperty(n.ID, "k", "v2")
	require.NoError(t, err)
	require.True(t, ok)

	got, _, err := b.GetNode(n.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Properties["k"])
}

func TestMemBackend_RemoveNodeDropsIncidentEdges(t *testing.T) {
	b := NewMemBackend()
	a, _ := b.AddNode("A", nil)
	c, _ := b.AddNode("B", nil)
	require.NoError(t, b.AddEdge(a.ID, c.ID, "rel"))

	ok, err := b.RemoveNode(a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	edges, err := b.AllEdges()
	require.NoError(t, err)
	for _, e := range edges {
		require.NotEqual(t, a.ID, e.From)
		require.NotEqual(t, a.ID, e.To)
	}
}

func TestMemBackend_FindByLabelUsesCache(t *testing.T) {
	b := NewMemBackend()
	_, _ = b.AddNode("person", nil)
	_, _ = b.AddNode("person", nil)
	_, _ = b.AddNode("place", nil)

	people, err := b.FindByLabel("person")
	require.NoError(t, err)
	require.Len(t, people, 2)

	// Second call is served from the LRU cache; result must be identical.
	peopleAgain, err := b.FindByLabel("person")
	require.NoError(t, err)
	require.Len(t, peopleAgain, 2)
}

func TestMemBackend_FindByProperty(t *testing.T) {
	b := NewMemBackend()
	n, _ := b.AddNode("A", map[string]string{"color": "red"})
	_, _ = b.AddNode("B", map[string]string{"color": "blue"})

	found, err := b.FindByProperty("color", "red")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, n.ID, found[0].ID)
}
