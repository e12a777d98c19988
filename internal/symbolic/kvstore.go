package symbolic

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB key prefix scheme, ported from the deleted megram store's
// "m|"/"x|"/"l|" prefix convention (haricheung-agentic-shell's
// internal/roles/memory/memory.go) and generalized to the symbolic graph:
//
//	n|<id>                          -> json(Node)
//	l|<label>|<id>                  -> "" (label index, prefix-scanned)
//	e|<from>|<relation>|<to>        -> "" (edge, prefix-scanned by from[+relation])
const (
	prefixNode  = "n|"
	prefixLabel = "l|"
	prefixEdge  = "e|"
)

func nodeKey(id uuid.UUID) []byte { return []byte(prefixNode + id.String()) }

func labelKey(label string, id uuid.UUID) []byte {
	return []byte(prefixLabel + safeKeyPart(label) + "|" + id.String())
}

func labelPrefix(label string) []byte {
	return []byte(prefixLabel + safeKeyPart(label) + "|")
}

func edgeKey(e Edge) []byte {
	return []byte(prefixEdge + e.From.String() + "|" + safeKeyPart(e.Relation) + "|" + e.To.String())
}

func edgePrefix(from uuid.UUID, relation string) []byte {
	if relation == "" {
		return []byte(prefixEdge + from.String() + "|")
	}
	return []byte(prefixEdge + from.String() + "|" + safeKeyPart(relation) + "|")
}

// safeKeyPart escapes the "|" separator so labels/relations containing it
// can't forge key boundaries.
func safeKeyPart(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// KVBackend is a goleveldb-backed persistent Backend.
type KVBackend struct {
	db *leveldb.DB
}

// OpenKVBackend opens (or creates) a LevelDB database at path.
func OpenKVBackend(path string) (*KVBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("symbolic: open leveldb at %s: %w", path, err)
	}
	slog.Info("[symbolic] opened leveldb backend", "path", path)
	return &KVBackend{db: db}, nil
}

func (k *KVBackend) AddNode(label string, properties map[string]string) (Node, error) {
	if properties == nil {
		properties = make(map[string]string)
	}
	n := Node{ID: uuid.New(), Label: label, Properties: properties}
	data, err := json.Marshal(n)
	if err != nil {
		return Node{}, fmt.Errorf("symbolic: marshal node: %w", err)
	}
	batch := new(leveldb.Batch)
	batch.Put(nodeKey(n.ID), data)
	batch.Put(labelKey(label, n.ID), nil)
	if err := k.db.Write(batch, nil); err != nil {
		return Node{}, fmt.Errorf("symbolic: write node: %w", err)
	}
	return n, nil
}

func (k *KVBackend) GetNode(id uuid.UUID) (Node, bool, error) {
	data, err := k.db.Get(nodeKey(id), nil)
	if err == leveldb.ErrNotFound {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, fmt.Errorf("symbolic: get node: %w", err)
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, false, fmt.Errorf("symbolic: unmarshal node: %w", err)
	}
	return n, true, nil
}

func (k *KVBackend) UpdateProperty(id uuid.UUID, key, value string) (bool, error) {
	n, ok, err := k.GetNode(id)
	if err != nil || !ok {
		return false, err
	}
	n.Properties[key] = value
	data, err := json.Marshal(n)
	if err != nil {
		return false, fmt.Errorf("symbolic: marshal node: %w", err)
	}
	if err := k.db.Put(nodeKey(id), data, nil); err != nil {
		return false, fmt.Errorf("symbolic: put node: %w", err)
	}
	return true, nil
}

func (k *KVBackend) RemoveNode(id uuid.UUID) (bool, error) {
	n, ok, err := k.GetNode(id)
	if err != nil || !ok {
		return false, err
	}
	batch := new(leveldb.Batch)
	batch.Delete(nodeKey(id))
	batch.Delete(labelKey(n.Label, id))

	edges, err := k.AllEdges()
	if err != nil {
		return false, err
	}
	for _, e := range edges {
		if e.From == id || e.To == id {
			batch.Delete(edgeKey(e))
		}
	}
	if err := k.db.Write(batch, nil); err != nil {
		return false, fmt.Errorf("symbolic: remove node: %w", err)
	}
	return true, nil
}

func (k *KVBackend) AddEdge(from, to uuid.UUID, relation string) error {
	if err := k.db.Put(edgeKey(Edge{From: from, To: to, Relation: relation}), nil, nil); err != nil {
		return fmt.Errorf("symbolic: put edge: %w", err)
	}
	return nil
}

func (k *KVBackend) EdgesFrom(id uuid.UUID, relation string) ([]Edge, error) {
	iter := k.db.NewIterator(util.BytesPrefix(edgePrefix(id, relation)), nil)
	defer iter.Release()
	var out []Edge
	for iter.Next() {
		e, err := parseEdgeKey(string(iter.Key()))
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("symbolic: scan edges: %w", err)
	}
	return out, nil
}

func (k *KVBackend) AllEdges() ([]Edge, error) {
	iter := k.db.NewIterator(util.BytesPrefix([]byte(prefixEdge)), nil)
	defer iter.Release()
	var out []Edge
	for iter.Next() {
		e, err := parseEdgeKey(string(iter.Key()))
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("symbolic: scan all edges: %w", err)
	}
	return out, nil
}

func parseEdgeKey(key string) (Edge, error) {
	rest := strings.TrimPrefix(key, prefixEdge)
	parts := splitUnescaped(rest)
	if len(parts) != 3 {
		return Edge{}, fmt.Errorf("symbolic: malformed edge key %q", key)
	}
	from, err := uuid.Parse(parts[0])
	if err != nil {
		return Edge{}, err
	}
	to, err := uuid.Parse(parts[2])
	if err != nil {
		return Edge{}, err
	}
	return Edge{From: from, To: to, Relation: unescapeKeyPart(parts[1])}, nil
}

// splitUnescaped splits on "|" that isn't preceded by a backslash escape.
func splitUnescaped(s string) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

func unescapeKeyPart(s string) string {
	return strings.ReplaceAll(s, "\\|", "|")
}

func (k *KVBackend) FindByLabel(label string) ([]Node, error) {
	iter := k.db.NewIterator(util.BytesPrefix(labelPrefix(label)), nil)
	defer iter.Release()
	var out []Node
	for iter.Next() {
		key := string(iter.Key())
		idStr := key[strings.LastIndex(key, "|")+1:]
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		n, ok, err := k.GetNode(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("symbolic: scan label index: %w", err)
	}
	return out, nil
}

func (k *KVBackend) FindByProperty(key, value string) ([]Node, error) {
	nodes, err := k.AllNodes()
	if err != nil {
		return nil, err
	}
	var out []Node
	for _, n := range nodes {
		if n.Properties[key] == value {
			out = append(out, n)
		}
	}
	return out, nil
}

func (k *KVBackend) AllNodes() ([]Node, error) {
	iter := k.db.NewIterator(util.BytesPrefix([]byte(prefixNode)), nil)
	defer iter.Release()
	var out []Node
	for iter.Next() {
		var n Node
		if err := json.Unmarshal(iter.Value(), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("symbolic: scan all nodes: %w", err)
	}
	return out, nil
}

func (k *KVBackend) Close() error {
	if err := k.db.Close(); err != nil {
		return fmt.Errorf("symbolic: close leveldb: %w", err)
	}
	return nil
}
