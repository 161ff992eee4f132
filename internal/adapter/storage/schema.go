// internal/adapter/storage/schema.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS observations (
		id                text PRIMARY KEY,
		user_id           text NOT NULL DEFAULT '',
		lat               double precision,
		lng               double precision,
		created_at        timestamptz,
		place_name        text NOT NULL DEFAULT '',
		detailed_location text NOT NULL DEFAULT '',
		location          text NOT NULL DEFAULT '',
		region            text NOT NULL DEFAULT '',
		capture_source    text NOT NULL DEFAULT '',
		is_live_capture   boolean NOT NULL DEFAULT false,
		embedded_lat      double precision,
		embedded_lng      double precision,
		media             text[] NOT NULL DEFAULT '{}',
		ingested_at       timestamptz NOT NULL DEFAULT now()
	);
	ALTER TABLE observations ADD COLUMN IF NOT EXISTS ingested_at timestamptz NOT NULL DEFAULT now();
	CREATE INDEX IF NOT EXISTS observations_created_at_idx ON observations (created_at);
	CREATE INDEX IF NOT EXISTS observations_undated_idx ON observations (ingested_at) WHERE created_at IS NULL;

	CREATE TABLE IF NOT EXISTS search_events (
		id         text PRIMARY KEY,
		term       text NOT NULL,
		created_at timestamptz NOT NULL
	);
	CREATE INDEX IF NOT EXISTS search_events_created_at_idx ON search_events (created_at);
`

// EnsureSchema creates the tables used by the stores if they do not exist
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}
