// internal/adapter/storage/search_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"livejourney/internal/domain/hotplace"
)

// SearchStore implements hotplace.SearchStore on PostgreSQL
type SearchStore struct {
	db *pgxpool.Pool
}

// NewSearchStore creates a new search event store
func NewSearchStore(db *pgxpool.Pool) *SearchStore {
	return &SearchStore{
		db: db,
	}
}

// SaveSearchEvent stores a search event, assigning an ID and timestamp when missing
func (s *SearchStore) SaveSearchEvent(ctx context.Context, e hotplace.SearchEvent) error {
	e = prepareSearchEvent(e, time.Now())

	_, err := s.db.Exec(
		ctx,
		`INSERT INTO search_events (id, term, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID,
		e.Term,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error saving search event: %w", err)
	}

	return nil
}

// RecentSearchEvents returns search events created at or after since, oldest first
func (s *SearchStore) RecentSearchEvents(ctx context.Context, since time.Time) ([]hotplace.SearchEvent, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT id, term, created_at FROM search_events
		 WHERE created_at >= $1
		 ORDER BY created_at ASC, id ASC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying search events: %w", err)
	}
	defer rows.Close()

	var events []hotplace.SearchEvent
	for rows.Next() {
		var e hotplace.SearchEvent
		if err := rows.Scan(&e.ID, &e.Term, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning search event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search events: %w", err)
	}

	return events, nil
}

func prepareSearchEvent(e hotplace.SearchEvent, now time.Time) hotplace.SearchEvent {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	e.Timestamp = e.Timestamp.UTC()
	return e
}
