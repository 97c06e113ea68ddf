package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rsvpkit/rsvpd/internal/model"
)

// MemoryEventStore is an in-memory EventStore for single-node deployments
// and tests. Store-level operations are atomic under a single RWMutex; the
// admission controller supplies per-event serialization on top.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

// NewMemoryEventStore constructs an empty MemoryEventStore.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[string]model.Event)}
}

func (s *MemoryEventStore) Create(_ context.Context, name string, date time.Time, capacity int) (*model.Event, error) {
	if err := model.ValidateNewEvent(name, date, capacity); err != nil {
		return nil, err
	}

	event := model.Event{
		ID:        uuid.New().String(),
		Name:      name,
		Date:      date.UTC(),
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.events[event.ID] = event
	s.mu.Unlock()
	return &event, nil
}

func (s *MemoryEventStore) Get(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (s *MemoryEventStore) ListUpcoming(_ context.Context, now time.Time) ([]model.Event, error) {
	s.mu.RLock()
	var events []model.Event
	for _, e := range s.events {
		if !e.Date.Before(now) {
			events = append(events, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func (s *MemoryEventStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// MemoryRsvpLedger is an in-memory RsvpLedger. The per-event membership map
// doubles as the uniqueness constraint.
type MemoryRsvpLedger struct {
	mu     sync.RWMutex
	byUser map[string]map[string]model.Rsvp // eventID -> userID -> rsvp
}

// NewMemoryRsvpLedger constructs an empty MemoryRsvpLedger.
func NewMemoryRsvpLedger() *MemoryRsvpLedger {
	return &MemoryRsvpLedger{byUser: make(map[string]map[string]model.Rsvp)}
}

func (l *MemoryRsvpLedger) Count(_ context.Context, eventID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byUser[eventID]), nil
}

func (l *MemoryRsvpLedger) Contains(_ context.Context, eventID, userID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.byUser[eventID][userID]
	return ok, nil
}

func (l *MemoryRsvpLedger) Insert(_ context.Context, eventID, userID string) (*model.Rsvp, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	users := l.byUser[eventID]
	if users == nil {
		users = make(map[string]model.Rsvp)
		l.byUser[eventID] = users
	}
	if _, ok := users[userID]; ok {
		return nil, ErrDuplicateRsvp
	}

	rsvp := model.Rsvp{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	users[userID] = rsvp
	return &rsvp, nil
}

func (l *MemoryRsvpLedger) Clear(_ context.Context, eventID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := len(l.byUser[eventID])
	delete(l.byUser, eventID)
	return removed, nil
}
