package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"livejourney/internal/domain/hotplace"
)

func TestIsVerified(t *testing.T) {
	at := func(lat, lng float64) *hotplace.Coordinates {
		return &hotplace.Coordinates{Lat: lat, Lng: lng}
	}

	tests := []struct {
		name     string
		coords   *hotplace.Coordinates
		embedded *hotplace.Coordinates
		expected bool
	}{
		{"identical points", at(baseLat, baseLng), at(baseLat, baseLng), true},
		{"49 m apart", at(baseLat, baseLng), at(baseLat+metersOfLatitude(49), baseLng), true},
		{"51 m apart", at(baseLat, baseLng), at(baseLat+metersOfLatitude(51), baseLng), false},
		{"no embedded tag", at(baseLat, baseLng), nil, false},
		{"no coordinates", nil, at(baseLat, baseLng), false},
		{"NaN embedded tag", at(baseLat, baseLng), at(math.NaN(), baseLng), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := hotplace.Observation{Coordinates: tt.coords, EmbeddedLocation: tt.embedded}
			assert.Equal(t, tt.expected, IsVerified(o))
		})
	}
}

func TestIsLiveCapture(t *testing.T) {
	assert.True(t, IsLiveCapture(hotplace.Observation{CaptureSource: hotplace.CaptureSourceCamera}))
	assert.True(t, IsLiveCapture(hotplace.Observation{IsLiveCapture: true}))
	assert.False(t, IsLiveCapture(hotplace.Observation{CaptureSource: "gallery"}))
	assert.False(t, IsLiveCapture(hotplace.Observation{}))
}
