// internal/adapter/events/ingester.go

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/metrics"
)

// Transport labels used for ingestion metrics
const (
	TransportNATS = "nats"
	TransportHTTP = "http"
)

// Ingester decodes raw payloads and persists them
type Ingester struct {
	observations hotplace.ObservationStore
	searches     hotplace.SearchStore
	now          func() time.Time
}

// NewIngester creates a new ingester
func NewIngester(observations hotplace.ObservationStore, searches hotplace.SearchStore) *Ingester {
	return &Ingester{
		observations: observations,
		searches:     searches,
		now:          time.Now,
	}
}

// IngestObservation decodes, validates and stores one observation payload
func (i *Ingester) IngestObservation(ctx context.Context, transport string, data []byte) (hotplace.Observation, error) {
	o, err := DecodeObservation(data, i.now())
	if err == nil {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		err = i.saveObservation(ctx, o)
	}
	metrics.RecordIngest("observation", transport, err)
	if err != nil {
		return hotplace.Observation{}, err
	}
	return o, nil
}

// IngestSearch decodes, validates and stores one search payload
func (i *Ingester) IngestSearch(ctx context.Context, transport string, data []byte) (hotplace.SearchEvent, error) {
	e, err := DecodeSearchEvent(data, i.now())
	if err == nil {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		err = i.saveSearch(ctx, e)
	}
	metrics.RecordIngest("search", transport, err)
	if err != nil {
		return hotplace.SearchEvent{}, err
	}
	return e, nil
}

// saveObservation stores an already decoded observation
func (i *Ingester) saveObservation(ctx context.Context, o hotplace.Observation) error {
	if err := i.observations.SaveObservation(ctx, o); err != nil {
		return fmt.Errorf("error storing observation: %w", err)
	}
	return nil
}

// saveSearch stores an already decoded search event
func (i *Ingester) saveSearch(ctx context.Context, e hotplace.SearchEvent) error {
	if err := i.searches.SaveSearchEvent(ctx, e); err != nil {
		return fmt.Errorf("error storing search event: %w", err)
	}
	return nil
}
