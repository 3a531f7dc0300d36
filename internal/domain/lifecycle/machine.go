// Package lifecycle holds the pure transition rules for application records.
// It has no dependencies beyond the model: legality of an edge is decided
// here, while persistence and side effects live in the service layer.
package lifecycle

import (
	"github.com/applyforge/applyforge/internal/domain/model"
)

// edges is the complete set of legal transitions. Illegal edges are rejected,
// never silently corrected.
var edges = map[model.State][]model.State{
	model.StateDiscovered:    {model.StateAnalyzed, model.StateDeclined, model.StateFailed},
	model.StateAnalyzed:      {model.StateOptimized, model.StateDeclined, model.StateFailed},
	model.StateOptimized:     {model.StatePendingReview, model.StateDeclined, model.StateFailed},
	model.StatePendingReview: {model.StateApproved, model.StateDeclined, model.StateFailed},
	model.StateApproved:      {model.StateSubmitting, model.StateDeclined, model.StateFailed},
	model.StateSubmitting: {
		model.StateSubmitted,
		model.StateRejected,
		model.StatePendingReview,
		model.StateFailed,
	},
	// Terminal states have no outgoing edges.
	model.StateSubmitted: {},
	model.StateRejected:  {},
	model.StateDeclined:  {},
	model.StateFailed:    {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to model.State) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Targets returns the legal target states from the given state.
func Targets(from model.State) []model.State {
	out := make([]model.State, len(edges[from]))
	copy(out, edges[from])
	return out
}

// Action is the single legal next automated step for a record.
type Action string

const (
	// ActionAnalyze extracts requirements for the record's posting.
	ActionAnalyze Action = "analyze"
	// ActionOptimize produces the tailored resume payload.
	ActionOptimize Action = "optimize"
	// ActionReview waits for a human decision; not dispatched automatically.
	ActionReview Action = "review"
	// ActionSubmit submits the application through the platform adapter.
	ActionSubmit Action = "submit"
	// ActionNone means the record is terminal or mid-flight; nothing to do.
	ActionNone Action = "none"
)

// NextAction resolves the single legal automated action for a record state.
// PendingReview is inert: review is a human action, except that a
// rate-limited record under the retry cap is re-approved by the scheduler.
func NextAction(state model.State) Action {
	switch state {
	case model.StateDiscovered:
		return ActionAnalyze
	case model.StateAnalyzed:
		return ActionOptimize
	case model.StateOptimized:
		return ActionReview
	case model.StateApproved:
		return ActionSubmit
	default:
		return ActionNone
	}
}

// AutoRetryable reports whether a PendingReview record with the given reason
// may be re-approved automatically once its backoff elapses. Human-actionable
// reasons (CAPTCHA, expired session) are inert until a person intervenes.
func AutoRetryable(state model.State, reason model.Reason) bool {
	if state != model.StatePendingReview {
		return false
	}
	if reason.HumanActionable() {
		return false
	}
	return reason == model.ReasonRateLimited || reason == model.ReasonNetworkTimeout
}
