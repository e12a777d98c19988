// Package procedural implements the procedural cache: a deterministic
// finite-state-machine engine tracking per-trace progress through a shared
// transition graph.
package procedural

// State is a step in a procedural trace's lifecycle. The built-in states
// cover the canonical observe/reason/act loop; Custom admits
// domain-specific states without widening the type.
type State struct {
	kind   stateKind
	custom string
}

type stateKind int

const (
	StateStart stateKind = iota
	StateObserve
	StateReason
	StateAct
	StateReflexion
	StateEnd
	stateCustom
)

var builtinStates = map[stateKind]State{
	StateStart:     {kind: StateStart},
	StateObserve:   {kind: StateObserve},
	StateReason:    {kind: StateReason},
	StateAct:       {kind: StateAct},
	StateReflexion: {kind: StateReflexion},
	StateEnd:       {kind: StateEnd},
}

// Start, Observe, Reason, Act, Reflexion, and End are the built-in FSM
// states.
var (
	Start     = builtinStates[StateStart]
	Observe   = builtinStates[StateObserve]
	Reason    = builtinStates[StateReason]
	Act       = builtinStates[StateAct]
	Reflexion = builtinStates[StateReflexion]
	End       = builtinStates[StateEnd]
)

// Custom constructs a named custom state.
func Custom(name string) State {
	return State{kind: stateCustom, custom: name}
}

// String renders the state's name, matching the teacher's Debug-derived
// logging style for enum-like values.
func (s State) String() string {
	switch s.kind {
	case StateStart:
		return "Start"
	case StateObserve:
		return "Observe"
	case StateReason:
		return "Reason"
	case StateAct:
		return "Act"
	case StateReflexion:
		return "Reflexion"
	case StateEnd:
		return "End"
	default:
		return s.custom
	}
}

// Transition is a directed edge in the shared FSM graph. A nil Condition
// matches only when advance is called with no condition; a non-nil
// Condition matches only an equal condition string.
type Transition struct {
	From      State
	To        State
	Condition *string
}

// condEqual reports whether a transition's condition matches the one
// passed to Advance, per original_source's None==None / Some(c)==Some(cond)
// matching rule.
func condEqual(transCond *string, given *string) bool {
	if transCond == nil {
		return given == nil
	}
	if given == nil {
		return false
	}
	return *transCond == *given
}
