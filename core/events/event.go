// Package events defines the structured event contract every keeper
// emits on a successful state transition (spec §6.3).
package events

import "github.com/marketlayer/futarchy/core/types"

// Event is anything that can describe itself as a wire-level
// types.Event. Every concrete event in this module (PoolCreated,
// CondSwap, VaultFinalized, ProposalLaunched, ...) implements it.
type Event interface {
	EventType() string
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers. Keepers never
// branch on whether an emitter is configured; callers that don't care
// about events pass NoopEmitter{}.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(Event) {}

// Recorder is a test double that stores every emitted event in order.
type Recorder struct {
	Events []Event
}

// Emit implements Emitter.
func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Types returns the EventType() of every recorded event, in order, a
// convenience for test assertions.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType()
	}
	return out
}
