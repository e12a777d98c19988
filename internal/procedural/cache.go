package procedural

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Trace is a single run's position in the shared FSM graph, plus whatever
// scratch memory it has accumulated along the way.
type Trace struct {
	ID      uuid.UUID
	Current State
	Memory  map[string]string
}

// Cache holds every live trace and the transition graph they advance
// through. Ported from original_source/src/modules/procedural_cache.rs,
// generalized with batch advance and FSM-invariant assertions.
type Cache struct {
	traces      map[uuid.UUID]*Trace
	transitions []Transition
}

// NewCache constructs an empty procedural cache.
func NewCache() *Cache {
	return &Cache{traces: make(map[uuid.UUID]*Trace)}
}

// AddTrace registers trace, indexed by its id.
func (c *Cache) AddTrace(trace Trace) {
	t := trace
	if t.Memory == nil {
		t.Memory = make(map[string]string)
	}
	c.traces[t.ID] = &t
}

// NewTrace constructs and registers a trace starting at Start, returning its
// id.
func (c *Cache) NewTrace() uuid.UUID {
	id := uuid.New()
	c.AddTrace(Trace{ID: id, Current: Start, Memory: make(map[string]string)})
	return id
}

// AddTransition appends an edge to the shared FSM graph.
func (c *Cache) AddTransition(t Transition) {
	c.transitions = append(c.transitions, t)
}

// RemoveTrace deletes a trace, reporting whether it existed.
func (c *Cache) RemoveTrace(id uuid.UUID) bool {
	if _, ok := c.traces[id]; !ok {
		return false
	}
	delete(c.traces, id)
	return true
}

// ResetTrace returns a trace to Start with empty memory, reporting whether
// it existed.
func (c *Cache) ResetTrace(id uuid.UUID) bool {
	t, ok := c.traces[id]
	if !ok {
		return false
	}
	t.Current = Start
	t.Memory = make(map[string]string)
	return true
}

// Advance finds the first transition (in declaration order) whose From
// matches the trace's current state and whose Condition matches condition,
// applies it, and returns the new state. ok is false if the trace doesn't
// exist or no transition matches.
func (c *Cache) Advance(id uuid.UUID, condition *string) (State, bool) {
	t, ok := c.traces[id]
	if !ok {
		var zero State
		return zero, false
	}
	for _, trans := range c.transitions {
		if trans.From != t.Current {
			continue
		}
		if condEqual(trans.Condition, condition) {
			t.Current = trans.To
			slog.Debug("[procedural] advanced trace", "id", id, "to", trans.To.String())
			return t.Current, true
		}
	}
	return State{}, false
}

// AdvanceBatch advances every id in ids under condition, in the order given,
// returning the resulting states keyed by id for those that advanced; ids
// that don't exist or have no matching transition are omitted. The result is
// a map, so it does not carry the input order.
func (c *Cache) AdvanceBatch(ids []uuid.UUID, condition *string) map[uuid.UUID]State {
	out := make(map[uuid.UUID]State, len(ids))
	for _, id := range ids {
		if state, ok := c.Advance(id, condition); ok {
			out[id] = state
		}
	}
	return out
}

// GetTrace returns the trace with id, if present.
func (c *Cache) GetTrace(id uuid.UUID) (Trace, bool) {
	t, ok := c.traces[id]
	if !ok {
		return Trace{}, false
	}
	return *t, true
}

// checkpoint is the on-disk shape for Save/Load: only the trace map is
// persisted, per the spec — the transition graph is code-defined, not data.
type checkpoint struct {
	Traces map[uuid.UUID]checkpointTrace `json:"traces"`
}

type checkpointTrace struct {
	Current string            `json:"current_state"`
	Memory  map[string]string `json:"memory"`
}

// Save writes every trace's id, current state name, and memory to path as
// pretty-printed JSON.
func (c *Cache) Save(path string) error {
	cp := checkpoint{Traces: make(map[uuid.UUID]checkpointTrace, len(c.traces))}
	for id, t := range c.traces {
		cp.Traces[id] = checkpointTrace{Current: t.Current.String(), Memory: t.Memory}
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("procedural: marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("procedural: write checkpoint: %w", err)
	}
	return nil
}

// Load replaces the cache's traces with the contents of a checkpoint file
// written by Save. Custom state names not among the built-ins are restored
// via Custom(name).
func (c *Cache) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("procedural: read checkpoint: %w", err)
	}
	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return fmt.Errorf("procedural: unmarshal checkpoint: %w", err)
	}
	traces := make(map[uuid.UUID]*Trace, len(cp.Traces))
	for id, ct := range cp.Traces {
		traces[id] = &Trace{ID: id, Current: stateFromName(ct.Current), Memory: ct.Memory}
	}
	c.traces = traces
	return nil
}

func stateFromName(name string) State {
	for _, s := range builtinStates {
		if s.String() == name {
			return s
		}
	}
	return Custom(name)
}

// AssertFSMInvariants panics if the transition graph violates either of the
// two properties the engine depends on for predictable behavior:
//
//  1. determinism — no state has two outgoing transitions with the same
//     condition (including two unconditional transitions), since Advance
//     takes the first match and a duplicate would make that choice
//     arbitrary from the caller's perspective.
//  2. reachability — every state that is the From of some transition, or
//     the Current state of some trace, is reachable from Start by
//     following transitions.
func (c *Cache) AssertFSMInvariants() {
	seen := make(map[State]map[string]bool)
	for _, t := range c.transitions {
		conds, ok := seen[t.From]
		if !ok {
			conds = make(map[string]bool)
			seen[t.From] = conds
		}
		key := "∅"
		if t.Condition != nil {
			key = *t.Condition
		}
		if conds[key] {
			panic(fmt.Sprintf("procedural: state %s has two outgoing transitions with condition %q", t.From, key))
		}
		conds[key] = true
	}

	reachable := map[State]bool{Start: true}
	queue := []State{Start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range c.transitions {
			if t.From == cur && !reachable[t.To] {
				reachable[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}
	for _, t := range c.transitions {
		if !reachable[t.From] {
			panic(fmt.Sprintf("procedural: state %s is unreachable from Start", t.From))
		}
	}
	for _, trace := range c.traces {
		if !reachable[trace.Current] {
			panic(fmt.Sprintf("procedural: trace %s sits in unreachable state %s", trace.ID, trace.Current))
		}
	}
}
