// Package admission implements the admission-control kernel: it serializes
// the check-then-admit decision per event so that the number of admitted
// registrations never exceeds the event's capacity, and so that repeated
// registration by the same user stays idempotent.
package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/rsvpkit/rsvpd/internal/repository"
)

// Outcome is the result of one admission attempt. Only Admitted performs a
// write; every other outcome is a pure read.
type Outcome int

const (
	// OutcomeUnknown means the attempt failed before a decision was reached.
	OutcomeUnknown Outcome = iota
	// Admitted means a new registration was recorded.
	Admitted
	// AlreadyRegistered means the user already held a registration; treated
	// as success by callers, nothing was written.
	AlreadyRegistered
	// RejectedFull means capacity was exhausted at decision time.
	RejectedFull
	// RejectedNotFound means the event does not exist.
	RejectedNotFound
)

func (o Outcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case AlreadyRegistered:
		return "already_registered"
	case RejectedFull:
		return "rejected_full"
	case RejectedNotFound:
		return "rejected_not_found"
	default:
		return "unknown"
	}
}

// ErrUnavailable is returned when repeated transient storage conflicts
// exhaust the retry budget. Distinct from RejectedFull: the caller may try
// again, nothing is known about remaining capacity.
var ErrUnavailable = errors.New("admission temporarily unavailable")

// maxAttempts bounds re-execution of the decision after a transient
// storage conflict.
const maxAttempts = 3

// Controller is a stateless coordinator over an EventStore and an
// RsvpLedger. All state lives in the stores; the controller only supplies
// the per-event exclusivity that makes the read-decide-write sequence
// atomic.
type Controller struct {
	events repository.EventStore
	ledger repository.RsvpLedger
	locks  *keyedMutex
}

// NewController constructs a Controller over the given stores.
func NewController(events repository.EventStore, ledger repository.RsvpLedger) *Controller {
	return &Controller{
		events: events,
		ledger: ledger,
		locks:  newKeyedMutex(),
	}
}

// Rsvp decides a single registration request. Decisions for the same event
// are serialized; decisions for different events never block each other.
// A request cancelled before the exclusive section is entered has no
// effect.
func (c *Controller) Rsvp(ctx context.Context, eventID, userID string) (Outcome, error) {
	unlock, err := c.locks.lock(ctx, eventID)
	if err != nil {
		return OutcomeUnknown, err
	}
	defer unlock()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome, err := c.decide(ctx, eventID, userID)
		if errors.Is(err, repository.ErrTransientConflict) {
			continue
		}
		return outcome, err
	}
	return OutcomeUnknown, ErrUnavailable
}

// decide runs one pass of the admission algorithm. The duplicate check runs
// before the capacity check so that a user who already holds a registration
// gets AlreadyRegistered even once the event has filled up; the order must
// not be swapped.
func (c *Controller) decide(ctx context.Context, eventID, userID string) (Outcome, error) {
	event, err := c.events.Get(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return RejectedNotFound, nil
	}
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("resolve event: %w", err)
	}

	registered, err := c.ledger.Contains(ctx, eventID, userID)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("check registration: %w", err)
	}
	if registered {
		return AlreadyRegistered, nil
	}

	count, err := c.ledger.Count(ctx, eventID)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("count registrations: %w", err)
	}
	if count >= event.Capacity {
		return RejectedFull, nil
	}

	if _, err := c.ledger.Insert(ctx, eventID, userID); err != nil {
		// A duplicate slipping past the Contains check means the same user
		// raced themselves; idempotent success, never an error.
		if errors.Is(err, repository.ErrDuplicateRsvp) {
			return AlreadyRegistered, nil
		}
		if errors.Is(err, repository.ErrTransientConflict) {
			return OutcomeUnknown, err
		}
		return OutcomeUnknown, fmt.Errorf("insert registration: %w", err)
	}
	return Admitted, nil
}

// Forget releases the lock slot for a deleted event.
func (c *Controller) Forget(eventID string) {
	c.locks.forget(eventID)
}
