package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkovChain_PredictsMostFrequentSuccessor(t *testing.T) {
	m := NewMarkovChain[string](10)
	m.Observe("a", "b")
	m.Observe("a", "c")
	m.Observe("a", "b")

	next, ok := m.PredictNext("a")
	require.True(t, ok)
	require.Equal(t, "b", next)
}

func TestMarkovChain_NoObservationsReturnsNotFound(t *testing.T) {
	m := NewMarkovChain[string](10)
	_, ok := m.PredictNext("a")
	require.False(t, ok)
}

func TestMarkovChain_EvictsOldestTransitionAtCapacity(t *testing.T) {
	m := NewMarkovChain[string](2)
	m.Observe("a", "b")
	m.Observe("a", "c")
	require.Equal(t, 2, m.Len())

	m.Observe("x", "y") // evicts the oldest transition, (a,b)
	require.Equal(t, 2, m.Len())

	_, stillThere := m.counts["a"]["b"]
	require.False(t, stillThere)
	_, cStillThere := m.counts["a"]["c"]
	require.True(t, cStillThere)
}

// Repeated observations of the same pair still consume the sliding window:
// each Observe enqueues, so at capacity 1 the count settles at a steady
// state of 1 (incremented then immediately decremented by eviction) rather
// than growing unbounded.
func TestMarkovChain_RepeatedObservationSlidesTheWindow(t *testing.T) {
	m := NewMarkovChain[string](1)
	m.Observe("a", "b")
	m.Observe("a", "b")
	m.Observe("a", "b")
	require.Equal(t, 1, m.Len())
	require.Equal(t, 1, m.counts["a"]["b"])

	next, ok := m.PredictNext("a")
	require.True(t, ok)
	require.Equal(t, "b", next)
}

// Eviction decrements the oldest observation's count rather than deleting
// the whole entry, so a pair observed more than once survives a single
// eviction with a reduced count instead of vanishing outright.
func TestMarkovChain_EvictionDecrementsRatherThanDeletes(t *testing.T) {
	m := NewMarkovChain[string](3)
	m.Observe("a", "b")
	m.Observe("a", "b")
	m.Observe("a", "c")
	require.Equal(t, 2, m.counts["a"]["b"])
	require.Equal(t, 1, m.counts["a"]["c"])

	m.Observe("a", "c") // queue now holds 4 observations, evicts the oldest (a,b)
	require.Equal(t, 3, m.Len())
	require.Equal(t, 1, m.counts["a"]["b"])
	require.Equal(t, 2, m.counts["a"]["c"])

	next, ok := m.PredictNext("a")
	require.True(t, ok)
	require.Equal(t, "c", next)
}
