// internal/domain/hotplace/model.go

package hotplace

import (
	"errors"
	"math"
	"time"
)

// UnknownPlaceKey is used when an observation carries no place name at all
const UnknownPlaceKey = "알 수 없는 장소"

// CaptureSourceCamera marks media taken directly with the in-app camera
const CaptureSourceCamera = "camera"

// Coordinates is a WGS84 point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite numbers
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lng) &&
		!math.IsInf(c.Lat, 0) && !math.IsInf(c.Lng, 0)
}

// Observation is a single geotagged activity event (a travel photo post).
// A zero Timestamp means the original value was missing or unparsable.
type Observation struct {
	ID               string       `json:"id"`
	UserID           string       `json:"userId"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
	PlaceName        string       `json:"placeName,omitempty"`
	DetailedLocation string       `json:"detailedLocation,omitempty"`
	Location         string       `json:"location,omitempty"`
	Region           string       `json:"region,omitempty"`
	CaptureSource    string       `json:"captureSource,omitempty"`
	IsLiveCapture    bool         `json:"isLiveCapture,omitempty"`
	EmbeddedLocation *Coordinates `json:"embeddedLocation,omitempty"`
	Media            []string     `json:"media,omitempty"`
}

// PlaceKey returns the most specific human-readable place name available
func (o Observation) PlaceKey() string {
	switch {
	case o.PlaceName != "":
		return o.PlaceName
	case o.DetailedLocation != "":
		return o.DetailedLocation
	case o.Location != "":
		return o.Location
	default:
		return UnknownPlaceKey
	}
}

// HasCoordinates reports whether the observation can take part in grouping
func (o Observation) HasCoordinates() bool {
	return o.Coordinates != nil && o.Coordinates.Valid()
}

// HasTimestamp reports whether the observation can take part in time-windowed signals
func (o Observation) HasTimestamp() bool {
	return !o.Timestamp.IsZero()
}

// SearchEvent is one free-text search performed by a user
type SearchEvent struct {
	ID        string    `json:"id,omitempty"`
	Term      string    `json:"term"`
	Timestamp time.Time `json:"timestamp"`
}

// Signals holds the three per-place signals, either raw or normalized
type Signals struct {
	Density  float64 `json:"density"`
	Activity float64 `json:"activity"`
	Interest float64 `json:"interest"`
}

// HotPlace is one ranked result of a ranking pass
type HotPlace struct {
	Key                 string      `json:"key"`
	Region              string      `json:"region,omitempty"`
	Center              Coordinates `json:"center"`
	RepresentativeImage string      `json:"representativeImage,omitempty"`
	RawSignals          Signals     `json:"rawSignals"`
	NormalizedSignals   Signals     `json:"normalizedSignals"`
	Score               float64     `json:"score"`
	PostCount           int         `json:"postCount"`
	UserCount           int         `json:"userCount"`
	Rising              bool        `json:"rising"`
	Verified            bool        `json:"verified"`
}

// Heat is the score scaled to an integer percentage for display
func (h HotPlace) Heat() int {
	return int(math.Round(h.Score * 100))
}

// Filter narrows a cached ranking
type Filter struct {
	Region       string
	MinScore     float64
	RisingOnly   bool
	VerifiedOnly bool
	Limit        int
}

// Match reports whether a place passes every criterion except Limit
func (f Filter) Match(p HotPlace) bool {
	if f.Region != "" && p.Region != f.Region {
		return false
	}
	if p.Score < f.MinScore {
		return false
	}
	if f.RisingOnly && !p.Rising {
		return false
	}
	if f.VerifiedOnly && !p.Verified {
		return false
	}
	return true
}

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidEvent = errors.New("invalid event")
)
