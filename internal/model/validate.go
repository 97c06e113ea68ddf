package model

import (
	"fmt"
	"time"
)

// MaxNameLength bounds event names.
const MaxNameLength = 200

// ValidationError reports a rejected field on event creation. It is returned
// synchronously to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateNewEvent enforces the creation invariants: non-empty bounded name
// and positive capacity. Stores call this before persisting; any further
// date policy belongs to the administrative caller.
func ValidateNewEvent(name string, date time.Time, capacity int) error {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("must not exceed %d characters", MaxNameLength)}
	}
	if date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be set"}
	}
	if capacity <= 0 {
		return &ValidationError{Field: "capacity", Reason: "must be a positive integer"}
	}
	return nil
}
