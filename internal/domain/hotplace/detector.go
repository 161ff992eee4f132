// internal/domain/hotplace/detector.go

package hotplace

import (
	"context"
	"time"
)

// Detector defines the interface for hot place detection
type Detector interface {
	// Start begins periodic ranking passes
	Start(ctx context.Context) error

	// Stop gracefully stops periodic ranking passes
	Stop(ctx context.Context) error

	// Refresh runs a ranking pass immediately and returns its result
	Refresh(ctx context.Context) ([]HotPlace, error)

	// GetHotPlaces returns the latest ranking filtered by the provided criteria
	GetHotPlaces(ctx context.Context, filter Filter) ([]HotPlace, error)

	// GetHotPlace returns the latest ranked place with the given key
	GetHotPlace(ctx context.Context, key string) (*HotPlace, error)

	// RegisterHandler registers a callback invoked after every ranking pass
	RegisterHandler(handler func([]HotPlace) error) error
}

// ObservationStore loads and saves observations
type ObservationStore interface {
	SaveObservation(ctx context.Context, o Observation) error
	RecentObservations(ctx context.Context, since time.Time) ([]Observation, error)
}

// SearchStore loads and saves search events
type SearchStore interface {
	SaveSearchEvent(ctx context.Context, e SearchEvent) error
	RecentSearchEvents(ctx context.Context, since time.Time) ([]SearchEvent, error)
}

// MediaResolver turns an opaque media reference into a displayable URL.
// It may return an empty string.
type MediaResolver interface {
	ResolveURL(ref string) string
}
