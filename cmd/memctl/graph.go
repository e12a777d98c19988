package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hipcortex/memcore/internal/symbolic"
)

type graphOutput struct {
	Nodes []symbolic.Node `json:"nodes"`
	Edges []symbolic.Edge `json:"edges"`
}

func cmdGraph(out, errOut io.Writer, args []string) int {
	fs := newFlagSet("graph")
	dbPath := fs.String("db", "graph.db", "path to the symbolic graph's LevelDB directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	backend, err := symbolic.OpenKVBackend(*dbPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	store := symbolic.NewStore(backend)
	defer store.Close()

	nodes, err := store.AllNodes()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	edges, err := store.AllEdges()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(graphOutput{Nodes: nodes, Edges: edges}); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}
