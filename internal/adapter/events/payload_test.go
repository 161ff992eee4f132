package events

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livejourney/internal/domain/hotplace"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"rfc3339", "2026-10-18T11:55:00Z", time.Date(2026, 10, 18, 11, 55, 0, 0, time.UTC)},
		{"rfc3339 with offset", "2026-10-18T20:55:00+09:00", time.Date(2026, 10, 18, 11, 55, 0, 0, time.UTC)},
		{"fractional seconds", "2026-10-18T11:55:00.250Z", time.Date(2026, 10, 18, 11, 55, 0, 250000000, time.UTC)},
		{"space separated", "2026-10-18 11:55:00", time.Date(2026, 10, 18, 11, 55, 0, 0, time.UTC)},
		{"epoch millis", "1792324500000", time.UnixMilli(1792324500000).UTC()},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday-ish", time.Time{}},
		{"negative epoch", "-5", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseTimestamp(tt.value)), "got %v", ParseTimestamp(tt.value))
		})
	}
}

func TestDecodeObservation(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		data := []byte(`{
			"id": "p1",
			"userId": "u1",
			"coordinates": {"lat": 35.1587, "lng": 129.1604},
			"timestamp": "2026-10-18T11:58:00Z",
			"placeName": " 해운대 ",
			"region": "부산",
			"captureSource": "Camera",
			"embeddedLocation": {"lat": 35.1588, "lng": 129.1605},
			"media": ["posts/p1.jpg"]
		}`)

		o, err := DecodeObservation(data, testNow)
		require.NoError(t, err)
		assert.Equal(t, "p1", o.ID)
		assert.Equal(t, "해운대", o.PlaceKey())
		assert.Equal(t, hotplace.CaptureSourceCamera, o.CaptureSource)
		assert.Equal(t, time.Date(2026, 10, 18, 11, 58, 0, 0, time.UTC), o.Timestamp)
		require.NotNil(t, o.EmbeddedLocation)
		assert.Equal(t, 35.1588, o.EmbeddedLocation.Lat)
		assert.Equal(t, []string{"posts/p1.jpg"}, o.Media)
	})

	t.Run("missing timestamp defaults to now", func(t *testing.T) {
		o, err := DecodeObservation([]byte(`{"userId":"u1","coordinates":{"lat":1,"lng":2}}`), testNow)
		require.NoError(t, err)
		assert.Equal(t, testNow, o.Timestamp)
		assert.Equal(t, hotplace.UnknownPlaceKey, o.PlaceKey())
	})

	t.Run("anonymous observation", func(t *testing.T) {
		o, err := DecodeObservation([]byte(`{"coordinates":{"lat":1,"lng":2},"placeName":"광안리"}`), testNow)
		require.NoError(t, err)
		assert.Empty(t, o.UserID)
		assert.Equal(t, "광안리", o.PlaceKey())
	})

	t.Run("unparsable timestamp stays zero", func(t *testing.T) {
		o, err := DecodeObservation([]byte(`{"userId":"u1","coordinates":{"lat":1,"lng":2},"timestamp":"not a date"}`), testNow)
		require.NoError(t, err)
		assert.False(t, o.HasTimestamp())
	})

	invalid := []struct {
		name string
		data string
	}{
		{"malformed json", `{"userId":`},
		{"user id too long", `{"userId":"` + strings.Repeat("u", 129) + `","coordinates":{"lat":1,"lng":2}}`},
		{"missing coordinates", `{"userId":"u1"}`},
		{"latitude out of range", `{"userId":"u1","coordinates":{"lat":95,"lng":2}}`},
		{"longitude out of range", `{"userId":"u1","coordinates":{"lat":1,"lng":-181}}`},
		{"embedded out of range", `{"userId":"u1","coordinates":{"lat":1,"lng":2},"embeddedLocation":{"lat":-91,"lng":0}}`},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeObservation([]byte(tt.data), testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, hotplace.ErrInvalidEvent)
		})
	}
}

func TestDecodeSearchEvent(t *testing.T) {
	e, err := DecodeSearchEvent([]byte(`{"term":"  해운대 맛집 ","timestamp":"2026-10-18T11:50:00Z"}`), testNow)
	require.NoError(t, err)
	assert.Equal(t, "해운대 맛집", e.Term)
	assert.Equal(t, time.Date(2026, 10, 18, 11, 50, 0, 0, time.UTC), e.Timestamp)

	e, err = DecodeSearchEvent([]byte(`{"term":"제주"}`), testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, e.Timestamp)

	for name, data := range map[string]string{
		"blank term":           `{"term":"   "}`,
		"unparsable timestamp": `{"term":"제주","timestamp":"soon"}`,
		"malformed json":       `[`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSearchEvent([]byte(data), testNow)
			assert.ErrorIs(t, err, hotplace.ErrInvalidEvent)
		})
	}
}
