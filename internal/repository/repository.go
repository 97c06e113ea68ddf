// Package repository defines the persistence boundaries of the RSVP system:
// an EventStore for event metadata and an RsvpLedger for admitted
// registrations. Both come in a Postgres and an in-memory flavour.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rsvpkit/rsvpd/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateRsvp is returned by Insert when the (event, user) pair already
// holds a registration. The uniqueness invariant is enforced here at the
// ledger boundary, independent of any pre-check by the caller.
var ErrDuplicateRsvp = errors.New("user already registered for this event")

// ErrTransientConflict signals an optimistic-concurrency collision in the
// store. Callers recover with a bounded retry; it is never shown to users.
var ErrTransientConflict = errors.New("transient storage conflict")

// EventStore owns event metadata and its identity lifecycle. Capacity is
// fixed at creation, so the store has no concurrency hazard beyond atomic
// insert.
type EventStore interface {
	// Create validates and persists a new event, assigning its identifier.
	// Rejections are reported as *model.ValidationError.
	Create(ctx context.Context, name string, date time.Time, capacity int) (*model.Event, error)

	// Get returns the event or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Event, error)

	// ListUpcoming returns a snapshot of events with date >= now, ascending
	// by date.
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error)

	// Delete removes the event or returns ErrNotFound. Cascading removal of
	// its registrations is explicit and belongs to the caller (see
	// RsvpLedger.Clear).
	Delete(ctx context.Context, id string) error
}

// RsvpLedger owns the set of admitted registrations per event. It enforces
// the per-(event, user) uniqueness invariant but not capacity; capacity
// requires an atomic read-then-write with the event's capacity value, which
// is the admission controller's job.
type RsvpLedger interface {
	// Count returns the current admitted registration count for the event.
	Count(ctx context.Context, eventID string) (int, error)

	// Contains reports whether the user already holds a registration.
	Contains(ctx context.Context, eventID, userID string) (bool, error)

	// Insert records a registration, or fails with ErrDuplicateRsvp if the
	// (event, user) pair already exists.
	Insert(ctx context.Context, eventID, userID string) (*model.Rsvp, error)

	// Clear removes every registration for the event and returns how many
	// were removed. Used by the event deletion cascade.
	Clear(ctx context.Context, eventID string) (int, error)
}
