// internal/service/geo/service.go

package geo

import (
	"math"

	"livejourney/internal/domain/hotplace"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance between two points in kilometers.
// Any NaN input yields NaN.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert latitude and longitude from degrees to radians
	rLat1 := lat1 * math.Pi / 180.0
	rLat2 := lat2 * math.Pi / 180.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLng / 2)
	vSin *= vSin

	h := hSin + math.Cos(rLat1)*math.Cos(rLat2)*vSin

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Distance calculates the distance between two coordinates in kilometers
func Distance(a, b hotplace.Coordinates) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// WithinRadiusKm checks if point lies within radiusKm of center (inclusive).
// NaN distances are never within range.
func WithinRadiusKm(point, center hotplace.Coordinates, radiusKm float64) bool {
	return Distance(point, center) <= radiusKm
}

// Centroid returns the arithmetic mean of the given points.
// The second return value is false for an empty slice.
func Centroid(points []hotplace.Coordinates) (hotplace.Coordinates, bool) {
	if len(points) == 0 {
		return hotplace.Coordinates{}, false
	}

	var c hotplace.Coordinates
	for _, p := range points {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}
	c.Lat /= float64(len(points))
	c.Lng /= float64(len(points))

	return c, true
}

// ValidateLocation checks that a coordinate pair is finite and within WGS84 bounds
func ValidateLocation(c hotplace.Coordinates) bool {
	if !c.Valid() {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
