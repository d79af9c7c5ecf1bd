package channels

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrChannelNotFound = errors.New("channel not registered")
	ErrConfigNotFound  = errors.New("channel config not found")
	ErrNotOwner        = errors.New("only the channel owner can change this")
	ErrNoValidEntries  = errors.New("no valid entries")
)

// ValidationError is returned when a list update contains no valid line. It
// carries every rejected line so callers can report them individually.
type ValidationError struct {
	Kind    ListKind
	Invalid []InvalidEntry
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Invalid))
	for _, inv := range e.Invalid {
		parts = append(parts, fmt.Sprintf("line %d %q: %s", inv.Line, inv.Value, inv.Reason))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %v", e.Kind, ErrNoValidEntries)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Kind, ErrNoValidEntries, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrNoValidEntries
}
