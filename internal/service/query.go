package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rsvpkit/rsvpd/internal/model"
	"github.com/rsvpkit/rsvpd/internal/repository"
)

// QueryService derives read-side projections from the two stores. It never
// mutates and never takes the admission lock: registration counts only grow
// between admissions, so a reader may see a slightly stale count but never
// an over-capacity one.
type QueryService struct {
	events repository.EventStore
	ledger repository.RsvpLedger
}

// NewQueryService constructs a QueryService.
func NewQueryService(events repository.EventStore, ledger repository.RsvpLedger) *QueryService {
	return &QueryService{events: events, ledger: ledger}
}

// RsvpCount returns the admitted registration count for the event.
func (q *QueryService) RsvpCount(ctx context.Context, event *model.Event) (int, error) {
	return q.ledger.Count(ctx, event.ID)
}

// IsFull reports whether the event has reached capacity.
func (q *QueryService) IsFull(ctx context.Context, event *model.Event) (bool, error) {
	count, err := q.ledger.Count(ctx, event.ID)
	if err != nil {
		return false, err
	}
	return count >= event.Capacity, nil
}

// HasUserRsvped reports whether userID holds a registration for the event.
// An empty userID (anonymous caller) is never registered.
func (q *QueryService) HasUserRsvped(ctx context.Context, event *model.Event, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return q.ledger.Contains(ctx, event.ID, userID)
}

// GetEvent returns the projection for a single event, or
// repository.ErrNotFound.
func (q *QueryService) GetEvent(ctx context.Context, id, currentUserID string) (*model.EventView, error) {
	event, err := q.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := q.project(ctx, event, currentUserID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListUpcomingEvents returns projections for all events with date >= now,
// ascending by date.
func (q *QueryService) ListUpcomingEvents(ctx context.Context, now time.Time, currentUserID string) ([]model.EventView, error) {
	events, err := q.events.ListUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}

	views := make([]model.EventView, 0, len(events))
	for i := range events {
		view, err := q.project(ctx, &events[i], currentUserID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (q *QueryService) project(ctx context.Context, event *model.Event, currentUserID string) (*model.EventView, error) {
	count, err := q.ledger.Count(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	rsvped, err := q.HasUserRsvped(ctx, event, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}

	return &model.EventView{
		ID:            event.ID,
		Name:          event.Name,
		Date:          event.Date,
		Capacity:      event.Capacity,
		RsvpCount:     count,
		IsFull:        count >= event.Capacity,
		HasUserRsvped: rsvped,
	}, nil
}
