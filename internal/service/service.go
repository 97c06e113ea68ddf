// Package service implements business operations on top of the stores and
// the admission controller: commands in EventService, read-side projections
// in QueryService.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rsvpkit/rsvpd/internal/admission"
	"github.com/rsvpkit/rsvpd/internal/model"
	"github.com/rsvpkit/rsvpd/internal/repository"
)

// ErrMissingUser is returned when a registration request arrives without a
// resolved user identity.
var ErrMissingUser = errors.New("user id is required")

// EventService orchestrates event commands. Identity resolution happens
// outside: callers pass an opaque, stable user identifier.
type EventService struct {
	events     repository.EventStore
	ledger     repository.RsvpLedger
	controller *admission.Controller
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	events repository.EventStore,
	ledger repository.RsvpLedger,
	controller *admission.Controller,
) *EventService {
	return &EventService{events: events, ledger: ledger, controller: controller}
}

// CreateEvent trims the name and delegates to the store, which validates
// before persisting.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	return s.events.Create(ctx, strings.TrimSpace(req.Name), req.Date, req.Capacity)
}

// Rsvp records a registration attempt for the given user. All concurrency
// control lives in the admission controller; this method only guards the
// inputs.
func (s *EventService) Rsvp(ctx context.Context, eventID, userID string) (admission.Outcome, error) {
	if eventID == "" {
		return admission.RejectedNotFound, nil
	}
	if userID == "" {
		return admission.OutcomeUnknown, ErrMissingUser
	}
	return s.controller.Rsvp(ctx, eventID, userID)
}

// DeleteEvent removes an event and, explicitly, every registration it owns.
// The ledger is cleared first so a failed event delete never leaves orphan
// registrations pointing at a missing event.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.events.Get(ctx, id); err != nil {
		return err
	}
	if _, err := s.ledger.Clear(ctx, id); err != nil {
		return fmt.Errorf("clear registrations: %w", err)
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.controller.Forget(id)
	return nil
}
