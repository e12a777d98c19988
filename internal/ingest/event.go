// Package ingest implements the Ingestion Router: the single entry point
// external producers submit memory events through, which fans each event
// out to the tier(s) it names (temporal, symbolic, procedural, durable).
package ingest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind selects which tier(s) an Event is routed to.
type Kind string

const (
	// KindObservation is a perception/observation event: recorded into the
	// temporal indexer and, if Durable is set, the memory store.
	KindObservation Kind = "observation"
	// KindSymbolicUpsert creates or updates a symbolic node/edge.
	KindSymbolicUpsert Kind = "symbolic_upsert"
	// KindProceduralAdvance advances a procedural trace.
	KindProceduralAdvance Kind = "procedural_advance"
	// KindReflexion is a reflective note, recorded only to the durable
	// memory store (e.g. an LLM-authored summary).
	KindReflexion Kind = "reflexion"
)

// Event is the envelope every producer submits to the router. Only the
// fields relevant to Kind need be populated.
type Event struct {
	Kind      Kind
	Actor     string
	Action    string
	Target    string
	Timestamp time.Time
	Metadata  json.RawMessage

	// Observation fields.
	Salience    float64
	DecayFactor float64

	// Symbolic fields.
	NodeID       uuid.UUID // zero value means "create a new node"
	Label        string
	Properties   map[string]string
	EdgeFrom     uuid.UUID
	EdgeTo       uuid.UUID
	EdgeRelation string

	// Procedural fields.
	TraceID   uuid.UUID
	Condition *string

	// Durable: when true, the router also appends a MemoryRecord of the
	// corresponding type to the durable store, independent of Kind.
	Durable bool
}
