package domain

import "time"

// PipelineState identifies where a request is in the agent pipeline.
// Transitions are strictly forward; a stage failure moves the request
// to StateFailed with the partial trace preserved.
type PipelineState string

// Pipeline states in transition order.
const (
	StateCreated   PipelineState = "created"
	StateRouted    PipelineState = "routed"
	StateRetrieved PipelineState = "retrieved"
	StateDrafted   PipelineState = "drafted"
	StateValidated PipelineState = "validated"
	StateCompleted PipelineState = "completed"
	StateFailed    PipelineState = "failed"
)

// stateOrder maps non-terminal states to their position in the forward
// transition sequence.
var stateOrder = map[PipelineState]int{
	StateCreated:   0,
	StateRouted:    1,
	StateRetrieved: 2,
	StateDrafted:   3,
	StateValidated: 4,
	StateCompleted: 5,
}

// IsTerminal returns true if no further transitions are allowed.
func (s PipelineState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo returns true if the target state is a legal forward
// transition. StateFailed is reachable from any non-terminal state.
func (s PipelineState) CanTransitionTo(target PipelineState) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StateFailed {
		return true
	}
	from, ok := stateOrder[s]
	if !ok {
		return false
	}
	to, ok := stateOrder[target]
	if !ok {
		return false
	}
	return to == from+1
}

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// Intent classifies what an inbound request wants.
type Intent string

// Recognised intents.
const (
	// IntentAsk answers a question against the knowledge base.
	IntentAsk Intent = "ask"

	// IntentDraft composes longer-form text from retrieved context.
	IntentDraft Intent = "draft"

	// IntentIngest adds documents to the knowledge base.
	IntentIngest Intent = "ingest"
)

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentAsk, IntentDraft, IntentIngest:
		return true
	default:
		return false
	}
}

// TraceEntry records one completed stage of a pipeline run.
// Every stage appends exactly one entry, success or failure, so the
// audit record always has a complete timeline up to the point of failure.
type TraceEntry struct {
	// Agent is the stage name (router, retriever, drafter, citechecker).
	Agent string

	// Action describes what the stage did or why it failed.
	Action string

	// Duration is how long the stage ran.
	Duration time.Duration
}
