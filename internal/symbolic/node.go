// Package symbolic implements the property-labeled directed multigraph used
// to hold durable relationships between entities, with pluggable in-memory
// and persistent (LevelDB) backends.
package symbolic

import "github.com/google/uuid"

// Node is a labeled vertex carrying arbitrary string properties.
type Node struct {
	ID         uuid.UUID
	Label      string
	Properties map[string]string
}

// Edge is a directed, relation-typed connection between two node ids. A
// (From, To, Relation) triple is unique within a graph — re-inserting the
// same triple is a no-op, matching a multigraph's edge-set semantics rather
// than allowing unbounded duplicate parallel edges of the identical
// relation.
type Edge struct {
	From     uuid.UUID
	To       uuid.UUID
	Relation string
}

// Backend is the storage interface a Store operates against. Implementations
// are MemBackend (in-memory, LRU-cached label lookup) and KVBackend
// (goleveldb-backed, persistent).
type Backend interface {
	AddNode(label string, properties map[string]string) (Node, error)
	GetNode(id uuid.UUID) (Node, bool, error)
	UpdateProperty(id uuid.UUID, key, value string) (bool, error)
	RemoveNode(id uuid.UUID) (bool, error)

	AddEdge(from, to uuid.UUID, relation string) error
	EdgesFrom(id uuid.UUID, relation string) ([]Edge, error)
	AllEdges() ([]Edge, error)

	FindByLabel(label string) ([]Node, error)
	FindByProperty(key, value string) ([]Node, error)
	AllNodes() ([]Node, error)

	Close() error
}
