package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIndexer_InsertAndAccess(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	id := idx.Insert("hello", 1.0, NewExponentialDecay(time.Hour), 1.0, now)

	data, ok := idx.Access(id, now.Add(time.Second))
	require.True(t, ok)
	require.Equal(t, "hello", data)
	require.Equal(t, 1, idx.Len())
}

// Scenario: a recent access resets the decay clock, so a trace accessed
// just before decay_and_prune survives even with a short half-life.
func TestIndexer_AccessRefreshesLastAccessAndDelaysDecay(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	id := idx.Insert("x", 1.0, NewExponentialDecay(time.Second), 1.0, now)

	later := now.Add(10 * time.Second)
	_, ok := idx.Access(id, later)
	require.True(t, ok)

	removed := idx.DecayAndPrune(later.Add(time.Millisecond), 0.01)
	require.Equal(t, 0, removed)
	_, ok = idx.GetTrace(id)
	require.True(t, ok)
}

// Scenario 5 from spec §8: insert a trace, advance time past its decay
// threshold, decay_and_prune removes it.
func TestIndexer_DecayAndPruneRemovesStaleTraces(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	id := idx.Insert("stale", 1.0, NewExponentialDecay(time.Minute), 1.0, now)

	later := now.Add(10 * time.Minute) // ten half-lives: salience ~ 1/1024
	removed := idx.DecayAndPrune(later, 0.01)
	require.Equal(t, 1, removed)

	_, ok := idx.GetTrace(id)
	require.False(t, ok)
}

func TestIndexer_DecayAndPruneKeepsFreshTraces(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	id := idx.Insert("fresh", 1.0, NewExponentialDecay(time.Hour), 1.0, now)

	removed := idx.DecayAndPrune(now.Add(time.Minute), 0.5)
	require.Equal(t, 0, removed)
	_, ok := idx.GetTrace(id)
	require.True(t, ok)
}

func TestIndexer_RemoveDeletesTrace(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	id := idx.Insert("x", 1.0, NewExponentialDecay(time.Hour), 1.0, now)
	require.True(t, idx.Remove(id))
	_, ok := idx.GetTrace(id)
	require.False(t, ok)
}

func TestIndexer_GetRecentOrdersMostRecentFirst(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	idx.Insert("a", 1, NewExponentialDecay(time.Hour), 1.0, now)
	idx.Insert("b", 1, NewExponentialDecay(time.Hour), 1.0, now.Add(time.Second))
	idx.Insert("c", 1, NewExponentialDecay(time.Hour), 1.0, now.Add(2*time.Second))

	recent := idx.GetRecent(2)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].Data)
	require.Equal(t, "b", recent[1].Data)
}

func TestIndexer_PredictNextFollowsInsertionOrder(t *testing.T) {
	idx := NewIndexer[string](10, 4)
	now := time.Unix(1000, 0)
	idx.Insert("a", 1, NewExponentialDecay(time.Hour), 1.0, now)
	idx.Insert("b", 1, NewExponentialDecay(time.Hour), 1.0, now.Add(time.Second))
	idx.Insert("c", 1, NewExponentialDecay(time.Hour), 1.0, now.Add(2*time.Second))

	next, ok := idx.PredictNext("a")
	require.True(t, ok)
	require.Equal(t, "b", next)
}
