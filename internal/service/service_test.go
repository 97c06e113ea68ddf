package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvpkit/rsvpd/internal/admission"
	"github.com/rsvpkit/rsvpd/internal/model"
	"github.com/rsvpkit/rsvpd/internal/repository"
	"github.com/rsvpkit/rsvpd/internal/service"
)

type fixture struct {
	events  *repository.MemoryEventStore
	ledger  *repository.MemoryRsvpLedger
	service *service.EventService
	queries *service.QueryService
}

func newFixture() *fixture {
	events := repository.NewMemoryEventStore()
	ledger := repository.NewMemoryRsvpLedger()
	controller := admission.NewController(events, ledger)
	return &fixture{
		events:  events,
		ledger:  ledger,
		service: service.NewEventService(events, ledger, controller),
		queries: service.NewQueryService(events, ledger),
	}
}

func Test_EventService_CreateEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	date := time.Now().Add(24 * time.Hour)

	event, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name:     "  GopherCon  ",
		Date:     date,
		Capacity: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "GopherCon", event.Name, "name is trimmed")
	assert.Equal(t, 100, event.Capacity)
	assert.NotEmpty(t, event.ID)

	_, err = f.service.CreateEvent(ctx, model.CreateEventRequest{Name: "   ", Date: date, Capacity: 10})
	var vErr *model.ValidationError
	assert.ErrorAs(t, err, &vErr, "whitespace-only name is rejected")

	_, err = f.service.CreateEvent(ctx, model.CreateEventRequest{Name: "X", Date: date, Capacity: 0})
	assert.ErrorAs(t, err, &vErr)
}

func Test_EventService_RsvpRequiresUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Meetup", Date: time.Now().Add(time.Hour), Capacity: 5,
	})
	require.NoError(t, err)

	_, err = f.service.Rsvp(ctx, event.ID, "")
	assert.ErrorIs(t, err, service.ErrMissingUser)

	outcome, err := f.service.Rsvp(ctx, "", "alice")
	require.NoError(t, err)
	assert.Equal(t, admission.RejectedNotFound, outcome)
}

func Test_EventService_DeleteEventCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Doomed", Date: time.Now().Add(time.Hour), Capacity: 5,
	})
	require.NoError(t, err)

	for _, user := range []string{"a", "b"} {
		outcome, err := f.service.Rsvp(ctx, event.ID, user)
		require.NoError(t, err)
		require.Equal(t, admission.Admitted, outcome)
	}

	require.NoError(t, f.service.DeleteEvent(ctx, event.ID))

	_, err = f.events.Get(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	count, err := f.ledger.Count(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "deletion removes the event's registrations")

	assert.ErrorIs(t, f.service.DeleteEvent(ctx, event.ID), repository.ErrNotFound)
}

func Test_QueryService_Projections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Workshop", Date: time.Now().Add(time.Hour), Capacity: 2,
	})
	require.NoError(t, err)

	count, err := f.queries.RsvpCount(ctx, event)
	require.NoError(t, err)
	assert.Zero(t, count)

	full, err := f.queries.IsFull(ctx, event)
	require.NoError(t, err)
	assert.False(t, full)

	for _, user := range []string{"a", "b"} {
		_, err := f.service.Rsvp(ctx, event.ID, user)
		require.NoError(t, err)
	}

	count, err = f.queries.RsvpCount(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	full, err = f.queries.IsFull(ctx, event)
	require.NoError(t, err)
	assert.True(t, full)

	rsvped, err := f.queries.HasUserRsvped(ctx, event, "a")
	require.NoError(t, err)
	assert.True(t, rsvped)

	rsvped, err = f.queries.HasUserRsvped(ctx, event, "stranger")
	require.NoError(t, err)
	assert.False(t, rsvped)

	// Anonymous callers are never registered.
	rsvped, err = f.queries.HasUserRsvped(ctx, event, "")
	require.NoError(t, err)
	assert.False(t, rsvped)
}

func Test_QueryService_GetEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Conf", Date: time.Now().Add(time.Hour), Capacity: 3,
	})
	require.NoError(t, err)

	_, err = f.service.Rsvp(ctx, event.ID, "alice")
	require.NoError(t, err)

	view, err := f.queries.GetEvent(ctx, event.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, event.ID, view.ID)
	assert.Equal(t, 1, view.RsvpCount)
	assert.False(t, view.IsFull)
	assert.True(t, view.HasUserRsvped)

	view, err = f.queries.GetEvent(ctx, event.ID, "bob")
	require.NoError(t, err)
	assert.False(t, view.HasUserRsvped)

	_, err = f.queries.GetEvent(ctx, "missing", "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func Test_QueryService_ListUpcomingEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	_, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Past", Date: now.Add(-time.Hour), Capacity: 3,
	})
	require.NoError(t, err)

	soon, err := f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Soon", Date: now.Add(time.Hour), Capacity: 1,
	})
	require.NoError(t, err)
	_, err = f.service.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Later", Date: now.Add(48 * time.Hour), Capacity: 3,
	})
	require.NoError(t, err)

	_, err = f.service.Rsvp(ctx, soon.ID, "alice")
	require.NoError(t, err)

	views, err := f.queries.ListUpcomingEvents(ctx, now, "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Soon", views[0].Name)
	assert.Equal(t, "Later", views[1].Name)
	assert.Equal(t, 1, views[0].RsvpCount)
	assert.True(t, views[0].IsFull)
	assert.True(t, views[0].HasUserRsvped)
	assert.False(t, views[1].HasUserRsvped)
}
