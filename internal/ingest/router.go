package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hipcortex/memcore/internal/durable"
	"github.com/hipcortex/memcore/internal/procedural"
	"github.com/hipcortex/memcore/internal/symbolic"
	"github.com/hipcortex/memcore/internal/temporal"
)

const tapBufSize = 256

// Router is the single entry point memory events are submitted through. It
// owns one instance of each tier and serializes writes into each with its
// own mutex (grounded on the teacher's per-store sync.Mutex discipline),
// while fanning out every accepted event to any registered taps (grounded
// on internal/bus/bus.go's tap-channel fan-out, generalized from
// types.Message to Event).
type Router struct {
	temporalMu sync.Mutex
	Temporal   *temporal.Indexer[uuid.UUID]

	symbolicMu sync.Mutex
	Symbolic   *symbolic.Store

	proceduralMu sync.Mutex
	Procedural   *procedural.Cache

	Durable *durable.Store

	tapMu sync.RWMutex
	taps  []chan Event

	decayProfile    temporal.DecayProfile
	decayDefault    float64
	decayPruneFloor float64
}

// Options configures the decay applied to observation events that don't
// specify their own profile.
type Options struct {
	DefaultDecay       temporal.DecayProfile
	DefaultDecayFactor float64
	PruneFloor         float64
}

// NewRouter constructs a Router over the given tier instances.
func NewRouter(temporalIdx *temporal.Indexer[uuid.UUID], symbolicStore *symbolic.Store, proceduralCache *procedural.Cache, durableStore *durable.Store, opts Options) *Router {
	if opts.DefaultDecayFactor <= 0 {
		opts.DefaultDecayFactor = 1.0
	}
	return &Router{
		Temporal:        temporalIdx,
		Symbolic:        symbolicStore,
		Procedural:      proceduralCache,
		Durable:         durableStore,
		decayProfile:    opts.DefaultDecay,
		decayDefault:    opts.DefaultDecayFactor,
		decayPruneFloor: opts.PruneFloor,
	}
}

// NewTap registers and returns a channel that receives every event the
// router successfully dispatches, non-blocking on send per bus.go's
// fan-out discipline — a full tap drops the event with a log warning
// rather than stalling the router.
func (r *Router) NewTap() <-chan Event {
	ch := make(chan Event, tapBufSize)
	r.tapMu.Lock()
	r.taps = append(r.taps, ch)
	r.tapMu.Unlock()
	return ch
}

func (r *Router) publishTap(e Event) {
	r.tapMu.RLock()
	taps := r.taps
	r.tapMu.RUnlock()
	for _, tap := range taps {
		select {
		case tap <- e:
		default:
			slog.Warn("[ingest] tap channel full, event dropped", "kind", e.Kind)
		}
	}
}

// Dispatch routes e to the tier(s) its Kind names, extending the durable
// audit chain when e.Durable is set.
func (r *Router) Dispatch(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	switch e.Kind {
	case KindObservation:
		if err := r.dispatchObservation(e); err != nil {
			return err
		}
	case KindSymbolicUpsert:
		if err := r.dispatchSymbolicUpsert(e); err != nil {
			return err
		}
	case KindProceduralAdvance:
		if err := r.dispatchProceduralAdvance(e); err != nil {
			return err
		}
	case KindReflexion:
		// durable-only by definition
	default:
		return fmt.Errorf("ingest: unknown event kind %q", e.Kind)
	}

	if (e.Durable || e.Kind == KindReflexion) && r.Durable != nil {
		if err := r.appendDurable(e); err != nil {
			return err
		}
	}

	r.publishTap(e)
	return nil
}

func (r *Router) dispatchObservation(e Event) error {
	if r.Temporal == nil {
		return nil
	}
	id := e.NodeID
	if id == uuid.Nil {
		id = uuid.New()
	}
	decay := e.DecayFactor
	if decay <= 0 {
		decay = r.decayDefault
	}
	r.temporalMu.Lock()
	r.Temporal.Insert(id, e.Salience, r.decayProfile, decay, e.Timestamp)
	r.temporalMu.Unlock()
	return nil
}

func (r *Router) dispatchSymbolicUpsert(e Event) error {
	if r.Symbolic == nil {
		return nil
	}
	r.symbolicMu.Lock()
	defer r.symbolicMu.Unlock()

	if e.NodeID == uuid.Nil && e.Label != "" {
		if _, err := r.Symbolic.AddNode(e.Label, e.Properties); err != nil {
			return fmt.Errorf("ingest: add node: %w", err)
		}
	}
	if e.NodeID != uuid.Nil {
		for k, v := range e.Properties {
			if _, err := r.Symbolic.UpdateProperty(e.NodeID, k, v); err != nil {
				return fmt.Errorf("ingest: update node: %w", err)
			}
		}
	}
	if e.EdgeFrom != uuid.Nil && e.EdgeTo != uuid.Nil {
		if err := r.Symbolic.AddEdge(e.EdgeFrom, e.EdgeTo, e.EdgeRelation); err != nil {
			return fmt.Errorf("ingest: add edge: %w", err)
		}
	}
	return nil
}

func (r *Router) dispatchProceduralAdvance(e Event) error {
	if r.Procedural == nil {
		return nil
	}
	r.proceduralMu.Lock()
	defer r.proceduralMu.Unlock()
	if _, ok := r.Procedural.Advance(e.TraceID, e.Condition); !ok {
		slog.Debug("[ingest] procedural advance had no matching transition", "trace", e.TraceID)
	}
	return nil
}

func (r *Router) appendDurable(e Event) error {
	var recordType durable.RecordType
	switch e.Kind {
	case KindObservation:
		recordType = durable.RecordTemporal
	case KindSymbolicUpsert:
		recordType = durable.RecordSymbolic
	case KindProceduralAdvance:
		recordType = durable.RecordProcedural
	case KindReflexion:
		recordType = durable.RecordReflexion
	default:
		recordType = durable.RecordPerception
	}
	rec := durable.NewRecord(recordType, e.Actor, e.Action, e.Target, e.Metadata)
	sealed, err := durable.Seal(rec)
	if err != nil {
		return fmt.Errorf("ingest: seal record: %w", err)
	}
	if err := r.Durable.Add(sealed); err != nil {
		return fmt.Errorf("ingest: append durable record: %w", err)
	}
	return nil
}

// Run drains events until ctx is cancelled, dispatching each one, and
// periodically decays and prunes the temporal indexer on pruneInterval —
// grounded on the teacher's ticker-plus-channel-plus-ctx.Done() select
// loop used for the background "Dreamer" sweep.
func (r *Router) Run(ctx context.Context, events <-chan Event, pruneInterval time.Duration) {
	var ticker *time.Ticker
	var tickC <-chan time.Time
	if pruneInterval > 0 {
		ticker = time.NewTicker(pruneInterval)
		tickC = ticker.C
		defer ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("[ingest] router stopping", "reason", ctx.Err())
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := r.Dispatch(e); err != nil {
				slog.Warn("[ingest] dispatch failed", "kind", e.Kind, "error", err)
			}
		case <-tickC:
			if r.Temporal == nil {
				continue
			}
			r.temporalMu.Lock()
			removed := r.Temporal.DecayAndPrune(time.Now().UTC(), r.decayPruneFloor)
			r.temporalMu.Unlock()
			if removed > 0 {
				slog.Debug("[ingest] pruned decayed traces", "removed", removed)
			}
		}
	}
}
