package temporal

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const markovCapacity = 256

// Trace is a single decaying observation held by an Indexer.
type Trace[T any] struct {
	ID          uuid.UUID
	Data        T
	Timestamp   time.Time
	LastAccess  time.Time
	Salience    float64
	Decay       DecayProfile
	DecayFactor float64
}

// decayedSalience returns the trace's salience decayed to now, measured from
// its last access (insertion counts as the first access).
func (t Trace[T]) decayedSalience(now time.Time) float64 {
	elapsed := now.Sub(t.LastAccess)
	if elapsed < 0 {
		elapsed = 0
	}
	return ApplyDecay(t.Salience, elapsed, t.Decay, t.DecayFactor)
}

// Indexer ties a segmented ring buffer of decaying traces to a Markov chain
// keyed by payload and a Poisson burst estimator over insertion times.
type Indexer[T comparable] struct {
	ring      *Ring[Trace[T]]
	markov    *MarkovChain[T]
	burst     *PoissonBurst
	lastState T
	hasLast   bool
	capacity  int
}

// NewIndexer constructs an Indexer bounded to capacity traces, chunked into
// segments of segmentSize.
func NewIndexer[T comparable](capacity, segmentSize int) *Indexer[T] {
	return &Indexer[T]{
		ring:     NewRing[Trace[T]](capacity, segmentSize),
		markov:   NewMarkovChain[T](markovCapacity),
		burst:    NewPoissonBurst(2.0),
		capacity: capacity,
	}
}

// SetTelemetry attaches prometheus reporting to the underlying ring buffer.
func (idx *Indexer[T]) SetTelemetry(t *Telemetry) { idx.ring.SetTelemetry(t) }

// Insert adds a new trace, recording a Markov transition from the
// previously inserted trace's payload to this one's and updating the burst
// estimator. Returns the new trace's id.
func (idx *Indexer[T]) Insert(data T, salience float64, decay DecayProfile, decayFactor float64, now time.Time) uuid.UUID {
	id := uuid.New()
	trace := Trace[T]{
		ID:          id,
		Data:        data,
		Timestamp:   now,
		LastAccess:  now,
		Salience:    salience,
		Decay:       decay,
		DecayFactor: decayFactor,
	}
	idx.ring.PushBack(trace, now.UnixNano())

	if idx.hasLast {
		idx.markov.Observe(idx.lastState, data)
	}
	idx.lastState = data
	idx.hasLast = true

	idx.burst.Observe(now)

	slog.Debug("[temporal] inserted trace", "id", id, "salience", salience)
	return id
}

// DecayAndPrune removes every trace whose decayed salience at now falls
// below threshold, returning the number removed.
func (idx *Indexer[T]) DecayAndPrune(now time.Time, threshold float64) int {
	before := idx.ring.Len()
	idx.ring.Retain(func(tr Trace[T]) bool {
		return tr.decayedSalience(now) >= threshold
	})
	removed := before - idx.ring.Len()
	if removed > 0 {
		slog.Debug("[temporal] pruned decayed traces", "removed", removed, "remaining", idx.ring.Len())
	}
	return removed
}

// GetTrace returns the trace with the given id, if present.
func (idx *Indexer[T]) GetTrace(id uuid.UUID) (Trace[T], bool) {
	seg, pos, ok := idx.ring.Position(func(tr Trace[T]) bool { return tr.ID == id })
	if !ok {
		var zero Trace[T]
		return zero, false
	}
	return idx.ring.segments[seg].items[pos], true
}

// Access returns the data held by the trace with id, refreshing its
// LastAccess to now so that its decay clock restarts from this point.
func (idx *Indexer[T]) Access(id uuid.UUID, now time.Time) (T, bool) {
	seg, pos, ok := idx.ring.Position(func(tr Trace[T]) bool { return tr.ID == id })
	if !ok {
		var zero T
		return zero, false
	}
	trace := &idx.ring.segments[seg].items[pos]
	trace.LastAccess = now
	return trace.Data, true
}

// Remove deletes the trace with id, returning whether it was present.
func (idx *Indexer[T]) Remove(id uuid.UUID) bool {
	seg, pos, ok := idx.ring.Position(func(tr Trace[T]) bool { return tr.ID == id })
	if !ok {
		return false
	}
	return idx.ring.RemoveAt(seg, pos)
}

// GetRecent returns up to n most-recently-inserted traces, most recent
// first.
func (idx *Indexer[T]) GetRecent(n int) []Trace[T] {
	var all []Trace[T]
	idx.ring.Each(func(tr Trace[T]) { all = append(all, tr) })
	if n > len(all) {
		n = len(all)
	}
	recent := make([]Trace[T], n)
	for i := 0; i < n; i++ {
		recent[i] = all[len(all)-1-i]
	}
	return recent
}

// PredictNext returns the most likely successor payload to follow state,
// based on historical insertion-order transitions.
func (idx *Indexer[T]) PredictNext(state T) (T, bool) {
	return idx.markov.PredictNext(state)
}

// IsBursty reports whether an arrival after the given gap would count as
// bursty relative to the running inter-arrival estimate. It classifies the
// caller-supplied gap only; it does not look at the most recent insertion.
func (idx *Indexer[T]) IsBursty(gap time.Duration) bool {
	return idx.burst.IsBursty(gap)
}

// Len returns the current number of live traces.
func (idx *Indexer[T]) Len() int { return idx.ring.Len() }
