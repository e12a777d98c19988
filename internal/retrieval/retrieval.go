// Package retrieval bridges the temporal indexer's recency ordering to the
// symbolic store's node identities, answering "what have we recently seen,
// resolved to the graph entities it refers to" queries.
package retrieval

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/hipcortex/memcore/internal/symbolic"
	"github.com/hipcortex/memcore/internal/temporal"
)

// RecentSource is the minimal view of a temporal.Indexer[uuid.UUID] that
// RecentSymbols needs, so it can be exercised against a fake in tests
// without depending on the whole indexer.
type RecentSource interface {
	GetRecent(n int) []temporal.Trace[uuid.UUID]
}

// NodeSource is the minimal view of a symbolic.Store that RecentSymbols
// needs.
type NodeSource interface {
	GetNode(id uuid.UUID) (symbolic.Node, bool, error)
}

// RecentSymbols resolves the n most-recently-inserted temporal traces whose
// data is a symbolic node id into the corresponding symbolic nodes,
// preserving recency order (most recent first) and silently dropping any
// id that no longer resolves to a live node — e.g. one that was since
// removed from the symbolic store.
func RecentSymbols(store NodeSource, indexer RecentSource, n int) ([]symbolic.Node, error) {
	traces := indexer.GetRecent(n)
	nodes := make([]symbolic.Node, 0, len(traces))
	for _, tr := range traces {
		node, ok, err := store.GetNode(tr.Data)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Debug("[retrieval] skipping recent trace with no live node", "id", tr.Data)
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
