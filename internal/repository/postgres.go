package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsvpkit/rsvpd/internal/model"
)

const (
	dialectPostgres = "postgres"

	tableEvents = "events"
	tableRsvps  = "rsvps"

	colID        = "id"
	colName      = "name"
	colDate      = "date"
	colCapacity  = "capacity"
	colCreatedAt = "created_at"
	colEventID   = "event_id"
	colUserID    = "user_id"

	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
)

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// mapPgError translates the SQLSTATEs the kernel cares about into the
// package sentinels and leaves everything else wrapped.
func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return ErrDuplicateRsvp
		case pgCodeSerializationFailure:
			return ErrTransientConflict
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PostgresEventStore persists events in PostgreSQL via pgx, building its
// statements with goqu.
type PostgresEventStore struct {
	db *pgxpool.Pool
}

// NewPostgresEventStore constructs a PostgresEventStore.
func NewPostgresEventStore(db *pgxpool.Pool) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) Create(ctx context.Context, name string, date time.Time, capacity int) (*model.Event, error) {
	if err := model.ValidateNewEvent(name, date, capacity); err != nil {
		return nil, err
	}

	event := &model.Event{
		ID:        uuid.New().String(),
		Name:      name,
		Date:      date.UTC(),
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
	}

	query, args, err := builder().
		Insert(tableEvents).
		Cols(colID, colName, colDate, colCapacity, colCreatedAt).
		Vals(goqu.Vals{event.ID, event.Name, event.Date, event.Capacity, event.CreatedAt}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert event: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return nil, mapPgError("insert event", err)
	}
	return event, nil
}

func (s *PostgresEventStore) Get(ctx context.Context, id string) (*model.Event, error) {
	query, args, err := builder().
		From(tableEvents).
		Select(colID, colName, colDate, colCapacity, colCreatedAt).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get event: %w", err)
	}

	var e model.Event
	err = s.db.QueryRow(ctx, query, args...).
		Scan(&e.ID, &e.Name, &e.Date, &e.Capacity, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError("get event", err)
	}
	return &e, nil
}

func (s *PostgresEventStore) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	query, args, err := builder().
		From(tableEvents).
		Select(colID, colName, colDate, colCapacity, colCreatedAt).
		Where(goqu.C(colDate).Gte(now.UTC())).
		Order(goqu.C(colDate).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list upcoming: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("list upcoming events", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Capacity, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresEventStore) Delete(ctx context.Context, id string) error {
	query, args, err := builder().
		Delete(tableEvents).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete event: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError("delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresRsvpLedger persists registrations in PostgreSQL. The
// UNIQUE(event_id, user_id) constraint backs the ledger's uniqueness
// invariant; violations surface as ErrDuplicateRsvp.
type PostgresRsvpLedger struct {
	db *pgxpool.Pool
}

// NewPostgresRsvpLedger constructs a PostgresRsvpLedger.
func NewPostgresRsvpLedger(db *pgxpool.Pool) *PostgresRsvpLedger {
	return &PostgresRsvpLedger{db: db}
}

func (l *PostgresRsvpLedger) Count(ctx context.Context, eventID string) (int, error) {
	query, args, err := builder().
		From(tableRsvps).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colEventID).Eq(eventID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count rsvps: %w", err)
	}

	var n int
	if err := l.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapPgError("count rsvps", err)
	}
	return n, nil
}

func (l *PostgresRsvpLedger) Contains(ctx context.Context, eventID, userID string) (bool, error) {
	query, args, err := builder().
		From(tableRsvps).
		Select(goqu.L("1")).
		Where(goqu.C(colEventID).Eq(eventID), goqu.C(colUserID).Eq(userID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build contains rsvp: %w", err)
	}

	var one int
	err = l.db.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapPgError("contains rsvp", err)
	}
	return true, nil
}

func (l *PostgresRsvpLedger) Insert(ctx context.Context, eventID, userID string) (*model.Rsvp, error) {
	rsvp := &model.Rsvp{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	query, args, err := builder().
		Insert(tableRsvps).
		Cols(colID, colEventID, colUserID, colCreatedAt).
		Vals(goqu.Vals{rsvp.ID, rsvp.EventID, rsvp.UserID, rsvp.CreatedAt}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert rsvp: %w", err)
	}

	if _, err := l.db.Exec(ctx, query, args...); err != nil {
		return nil, mapPgError("insert rsvp", err)
	}
	return rsvp, nil
}

func (l *PostgresRsvpLedger) Clear(ctx context.Context, eventID string) (int, error) {
	query, args, err := builder().
		Delete(tableRsvps).
		Where(goqu.C(colEventID).Eq(eventID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build clear rsvps: %w", err)
	}

	tag, err := l.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPgError("clear rsvps", err)
	}
	return int(tag.RowsAffected()), nil
}
