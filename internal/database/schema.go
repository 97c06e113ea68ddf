package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The UNIQUE(event_id, user_id) constraint is a hard invariant boundary:
// the ledger maps its violation to the duplicate-registration error. The
// FK cascade is defense in depth only; event deletion clears registrations
// explicitly before removing the event row.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		date       TIMESTAMPTZ NOT NULL,
		capacity   INTEGER NOT NULL CHECK (capacity > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rsvps (
		id         UUID PRIMARY KEY,
		event_id   UUID NOT NULL REFERENCES events (id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (event_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvps_event_id ON rsvps (event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events (date)`,
}

// Migrate applies the schema. Idempotent, runs at startup. Statements are
// executed one at a time; pgx's extended protocol rejects multi-statement
// strings.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
