package symbolic

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKVBackend_AddNodeAndReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph.db")
	b, err := OpenKVBackend(dir)
	require.NoError(t, err)

	n, err := b.AddNode("person", map[string]string{"name": "ada"})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b2, err := OpenKVBackend(dir)
	require.NoError(t, err)
	defer b2.Close()

	got, ok, err := b2.GetNode(n.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ada", got.Properties["name"])
}

func TestKVBackend_EdgesAndLabelIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph.db")
	b, err := OpenKVBackend(dir)
	require.NoError(t, err)
	defer b.Close()

	a, _ := b.AddNode("person", nil)
	c, _ := b.AddNode("person", nil)
	require.NoError(t, b.AddEdge(a.ID, c.ID, "knows"))

	edges, err := b.EdgesFrom(a.ID, "knows")
	require.NoError(t, err)
	require.Len(t, edges, 1)

	people, err := b.FindByLabel("person")
	require.NoError(t, err)
	require.Len(t, people, 2)
}

func TestKVBackend_RemoveNodeDropsIncidentEdges(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph.db")
	b, err := OpenKVBackend(dir)
	require.NoError(t, err)
	defer b.Close()

	a, _ := b.AddNode("A", nil)
	c, _ := b.AddNode("B", nil)
	require.NoError(t, b.AddEdge(a.ID, c.ID, "rel"))

	ok, err := b.RemoveNode(a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	edges, err := b.AllEdges()
	require.NoError(t, err)
	require.Empty(t, edges)
}

func TestKVBackend_RelationWithSeparatorRoundTrips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph.db")
	b, err := OpenKVBackend(dir)
	require.NoError(t, err)
	defer b.Close()

	a, _ := b.AddNode("A", nil)
	c, _ := b.AddNode("B", nil)
	require.NoError(t, b.AddEdge(a.ID, c.ID, "rel|with|pipes"))

	edges, err := b.EdgesFrom(a.ID, "rel|with|pipes")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, "rel|with|pipes", edges[0].Relation)
}
