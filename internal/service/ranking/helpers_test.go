package ranking

import (
	"time"

	"livejourney/internal/domain/hotplace"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// haeundae beach
const (
	baseLat = 35.1587
	baseLng = 129.1604
)

// metersOfLatitude converts a north-south offset in meters to degrees
func metersOfLatitude(m float64) float64 {
	return m / (6371000.0 * 3.141592653589793 / 180.0)
}

func newObservation(id, user, key string, lat, lng float64, age time.Duration) hotplace.Observation {
	return hotplace.Observation{
		ID:          id,
		UserID:      user,
		PlaceName:   key,
		Coordinates: &hotplace.Coordinates{Lat: lat, Lng: lng},
		Timestamp:   testNow.Add(-age),
	}
}
