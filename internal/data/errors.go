package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrRecordNotFound is returned when an application record is not found.
	ErrRecordNotFound = errors.New("application record not found")
	// ErrPostingNotFound is returned when a job posting is not found.
	ErrPostingNotFound = errors.New("job posting not found")
	// ErrTransitionRequired is returned when AppendTransition receives an
	// incomplete transition entry.
	ErrTransitionRequired = errors.New("transition from/to/reason/causal id are required")
)
