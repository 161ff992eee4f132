// internal/adapter/storage/observation_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"livejourney/internal/domain/hotplace"
)

// ObservationStore implements hotplace.ObservationStore on PostgreSQL
type ObservationStore struct {
	db *pgxpool.Pool
}

// NewObservationStore creates a new observation store
func NewObservationStore(db *pgxpool.Pool) *ObservationStore {
	return &ObservationStore{
		db: db,
	}
}

// observationRow mirrors the nullable columns of the observations table
type observationRow struct {
	ID               string
	UserID           string
	Lat, Lng         *float64
	CreatedAt        *time.Time
	PlaceName        string
	DetailedLocation string
	Location         string
	Region           string
	CaptureSource    string
	IsLiveCapture    bool
	EmbeddedLat      *float64
	EmbeddedLng      *float64
	Media            []string
}

func newObservationRow(o hotplace.Observation) observationRow {
	row := observationRow{
		ID:               o.ID,
		UserID:           o.UserID,
		PlaceName:        o.PlaceName,
		DetailedLocation: o.DetailedLocation,
		Location:         o.Location,
		Region:           o.Region,
		CaptureSource:    o.CaptureSource,
		IsLiveCapture:    o.IsLiveCapture,
		Media:            o.Media,
	}

	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	if row.Media == nil {
		row.Media = []string{}
	}
	if o.Coordinates != nil {
		row.Lat = &o.Coordinates.Lat
		row.Lng = &o.Coordinates.Lng
	}
	if !o.Timestamp.IsZero() {
		ts := o.Timestamp.UTC()
		row.CreatedAt = &ts
	}
	if o.EmbeddedLocation != nil {
		row.EmbeddedLat = &o.EmbeddedLocation.Lat
		row.EmbeddedLng = &o.EmbeddedLocation.Lng
	}

	return row
}

func (r observationRow) toObservation() hotplace.Observation {
	o := hotplace.Observation{
		ID:               r.ID,
		UserID:           r.UserID,
		PlaceName:        r.PlaceName,
		DetailedLocation: r.DetailedLocation,
		Location:         r.Location,
		Region:           r.Region,
		CaptureSource:    r.CaptureSource,
		IsLiveCapture:    r.IsLiveCapture,
		Media:            r.Media,
	}

	if r.Lat != nil && r.Lng != nil {
		o.Coordinates = &hotplace.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
	}
	if r.CreatedAt != nil {
		o.Timestamp = *r.CreatedAt
	}
	if r.EmbeddedLat != nil && r.EmbeddedLng != nil {
		o.EmbeddedLocation = &hotplace.Coordinates{Lat: *r.EmbeddedLat, Lng: *r.EmbeddedLng}
	}

	return o
}

// SaveObservation inserts or replaces an observation
func (s *ObservationStore) SaveObservation(ctx context.Context, o hotplace.Observation) error {
	query := `
		INSERT INTO observations (
			id, user_id, lat, lng, created_at,
			place_name, detailed_location, location, region,
			capture_source, is_live_capture, embedded_lat, embedded_lng, media
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14
		)
		ON CONFLICT (id) DO UPDATE
		SET
			user_id = $2,
			lat = $3,
			lng = $4,
			created_at = $5,
			place_name = $6,
			detailed_location = $7,
			location = $8,
			region = $9,
			capture_source = $10,
			is_live_capture = $11,
			embedded_lat = $12,
			embedded_lng = $13,
			media = $14
	`

	row := newObservationRow(o)

	_, err := s.db.Exec(
		ctx,
		query,
		row.ID,
		row.UserID,
		row.Lat,
		row.Lng,
		row.CreatedAt,
		row.PlaceName,
		row.DetailedLocation,
		row.Location,
		row.Region,
		row.CaptureSource,
		row.IsLiveCapture,
		row.EmbeddedLat,
		row.EmbeddedLng,
		row.Media,
	)
	if err != nil {
		return fmt.Errorf("error saving observation: %w", err)
	}

	return nil
}

// recentObservationsQuery selects located observations created at or after $1.
// Observations without a creation time are kept while their ingestion time is
// inside the same lookback; they sort after dated ones.
const recentObservationsQuery = `
	SELECT
		id, user_id, lat, lng, created_at,
		place_name, detailed_location, location, region,
		capture_source, is_live_capture, embedded_lat, embedded_lng, media
	FROM observations
	WHERE (created_at >= $1 OR (created_at IS NULL AND ingested_at >= $1))
	AND lat IS NOT NULL AND lng IS NOT NULL
	ORDER BY created_at ASC NULLS LAST, ingested_at ASC, id ASC
`

// RecentObservations returns located observations created at or after since,
// oldest first, followed by undated observations ingested at or after since
func (s *ObservationStore) RecentObservations(ctx context.Context, since time.Time) ([]hotplace.Observation, error) {
	rows, err := s.db.Query(ctx, recentObservationsQuery, since)
	if err != nil {
		return nil, fmt.Errorf("error querying observations: %w", err)
	}
	defer rows.Close()

	var observations []hotplace.Observation
	for rows.Next() {
		var r observationRow
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.Lat,
			&r.Lng,
			&r.CreatedAt,
			&r.PlaceName,
			&r.DetailedLocation,
			&r.Location,
			&r.Region,
			&r.CaptureSource,
			&r.IsLiveCapture,
			&r.EmbeddedLat,
			&r.EmbeddedLng,
			&r.Media,
		); err != nil {
			return nil, fmt.Errorf("error scanning observation: %w", err)
		}
		observations = append(observations, r.toObservation())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return observations, nil
}
