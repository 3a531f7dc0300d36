// Package errors normalizes engine errors into stable class names for
// metric tags and log fields.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/applyforge/applyforge/internal/core"
)

// wellKnown maps the engine's sentinel errors to fixed class names so the
// tag vocabulary stays stable across refactors.
var wellKnown = []struct {
	err  error
	name string
}{
	{core.ErrInvalidTransition, "invalid_transition"},
	{core.ErrPermissionDenied, "permission_denied"},
	{core.ErrConflict, "version_conflict"},
	{core.ErrOptimizationUnavailable, "optimization_unavailable"},
	{core.ErrAnalysisUnavailable, "analysis_unavailable"},
	{core.ErrUnsupportedFormat, "unsupported_format"},
	{core.ErrCorruptDocument, "corrupt_document"},
}

// Classify returns a normalized class name for the error, suitable for
// tagging metrics and logs.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for _, w := range wellKnown {
		if goerrors.Is(err, w.err) {
			return w.name
		}
	}

	var se *core.SubmitError
	if goerrors.As(err, &se) {
		return "submit_" + string(se.Kind)
	}

	// Fall back to the innermost concrete type name.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
