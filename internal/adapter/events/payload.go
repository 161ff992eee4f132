// internal/adapter/events/payload.go

package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/validation"
)

// CoordinatesPayload is the wire form of a point
type CoordinatesPayload struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// ObservationPayload is the wire form of an observation, shared by NATS and HTTP ingestion
type ObservationPayload struct {
	ID               string              `json:"id" validate:"omitempty,max=128"`
	UserID           string              `json:"userId" validate:"omitempty,max=128"`
	Coordinates      *CoordinatesPayload `json:"coordinates" validate:"required"`
	Timestamp        string              `json:"timestamp"`
	PlaceName        string              `json:"placeName" validate:"max=256"`
	DetailedLocation string              `json:"detailedLocation" validate:"max=256"`
	Location         string              `json:"location" validate:"max=256"`
	Region           string              `json:"region" validate:"max=128"`
	CaptureSource    string              `json:"captureSource" validate:"max=32"`
	IsLiveCapture    bool                `json:"isLiveCapture"`
	EmbeddedLocation *CoordinatesPayload `json:"embeddedLocation" validate:"omitempty"`
	Media            []string            `json:"media" validate:"max=20,dive,max=2048"`
}

// SearchPayload is the wire form of a search event
type SearchPayload struct {
	ID        string `json:"id" validate:"omitempty,max=128"`
	Term      string `json:"term" validate:"required,max=256"`
	Timestamp string `json:"timestamp"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// ParseTimestamp accepts RFC 3339 strings, a few common variants and Unix epoch
// milliseconds. It returns the zero time when the value cannot be parsed.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}

	return time.Time{}
}

// resolveTimestamp defaults a missing timestamp to now; a present but unparsable
// one stays zero.
func resolveTimestamp(value string, now time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return now.UTC()
	}
	return ParseTimestamp(value)
}

// ToObservation validates the payload and converts it into a domain observation
func (p ObservationPayload) ToObservation(now time.Time) (hotplace.Observation, error) {
	if err := validation.ValidateStruct(&p); err != nil {
		return hotplace.Observation{}, fmt.Errorf("%w: %w", hotplace.ErrInvalidEvent, err)
	}

	o := hotplace.Observation{
		ID:               p.ID,
		UserID:           p.UserID,
		Coordinates:      &hotplace.Coordinates{Lat: p.Coordinates.Lat, Lng: p.Coordinates.Lng},
		Timestamp:        resolveTimestamp(p.Timestamp, now),
		PlaceName:        strings.TrimSpace(p.PlaceName),
		DetailedLocation: strings.TrimSpace(p.DetailedLocation),
		Location:         strings.TrimSpace(p.Location),
		Region:           strings.TrimSpace(p.Region),
		CaptureSource:    strings.ToLower(strings.TrimSpace(p.CaptureSource)),
		IsLiveCapture:    p.IsLiveCapture,
		Media:            p.Media,
	}

	if p.EmbeddedLocation != nil {
		o.EmbeddedLocation = &hotplace.Coordinates{Lat: p.EmbeddedLocation.Lat, Lng: p.EmbeddedLocation.Lng}
	}

	return o, nil
}

// ToSearchEvent validates the payload and converts it into a domain search event
func (p SearchPayload) ToSearchEvent(now time.Time) (hotplace.SearchEvent, error) {
	p.Term = strings.TrimSpace(p.Term)
	if err := validation.ValidateStruct(&p); err != nil {
		return hotplace.SearchEvent{}, fmt.Errorf("%w: %w", hotplace.ErrInvalidEvent, err)
	}

	ts := resolveTimestamp(p.Timestamp, now)
	if ts.IsZero() {
		return hotplace.SearchEvent{}, fmt.Errorf("%w: unparsable timestamp %q", hotplace.ErrInvalidEvent, p.Timestamp)
	}

	return hotplace.SearchEvent{
		ID:        p.ID,
		Term:      p.Term,
		Timestamp: ts,
	}, nil
}

// DecodeObservation parses and validates a JSON observation payload
func DecodeObservation(data []byte, now time.Time) (hotplace.Observation, error) {
	var p ObservationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return hotplace.Observation{}, fmt.Errorf("%w: %w", hotplace.ErrInvalidEvent, err)
	}
	return p.ToObservation(now)
}

// DecodeSearchEvent parses and validates a JSON search payload
func DecodeSearchEvent(data []byte, now time.Time) (hotplace.SearchEvent, error) {
	var p SearchPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return hotplace.SearchEvent{}, fmt.Errorf("%w: %w", hotplace.ErrInvalidEvent, err)
	}
	return p.ToSearchEvent(now)
}
