package retrieval

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hipcortex/memcore/internal/symbolic"
	"github.com/hipcortex/memcore/internal/temporal"
	"github.com/stretchr/testify/require"
)

// Scenario 6 from spec §8: node A with id u; the indexer holds one trace
// with data=u; recent_symbols(store, indexer, 1) returns [A].
func TestRecentSymbols_ResolvesSingleTrace(t *testing.T) {
	store := symbolic.NewStore(symbolic.NewMemBackend())
	a, err := store.AddNode("A", nil)
	require.NoError(t, err)

	idx := temporal.NewIndexer[uuid.UUID](10, 4)
	idx.Insert(a.ID, 1.0, temporal.NewExponentialDecay(time.Hour), 1.0, time.Unix(1000, 0))

	nodes, err := RecentSymbols(store, idx, 1)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, a.ID, nodes[0].ID)
}

func TestRecentSymbols_SkipsDanglingIDs(t *testing.T) {
	store := symbolic.NewStore(symbolic.NewMemBackend())
	a, err := store.AddNode("A", nil)
	require.NoError(t, err)
	ghostID := uuid.New()

	idx := temporal.NewIndexer[uuid.UUID](10, 4)
	now := time.Unix(1000, 0)
	idx.Insert(ghostID, 1.0, temporal.NewExponentialDecay(time.Hour), 1.0, now)
	idx.Insert(a.ID, 1.0, temporal.NewExponentialDecay(time.Hour), 1.0, now.Add(time.Second))

	nodes, err := RecentSymbols(store, idx, 2)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, a.ID, nodes[0].ID)
}

func TestRecentSymbols_PreservesRecencyOrder(t *testing.T) {
	store := symbolic.NewStore(symbolic.NewMemBackend())
	a, _ := store.AddNode("A", nil)
	b, _ := store.AddNode("B", nil)

	idx := temporal.NewIndexer[uuid.UUID](10, 4)
	now := time.Unix(1000, 0)
	idx.Insert(a.ID, 1.0, temporal.NewExponentialDecay(time.Hour), 1.0, now)
	idx.Insert(b.ID, 1.0, temporal.NewExponentialDecay(time.Hour), 1.0, now.Add(time.Second))

	nodes, err := RecentSymbols(store, idx, 2)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, b.ID, nodes[0].ID)
	require.Equal(t, a.ID, nodes[1].ID)
}
