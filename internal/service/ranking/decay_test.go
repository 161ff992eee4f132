package ranking

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecay(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		halfLife float64
		expected float64
	}{
		{"zero age weighs one", 0, 5, 1},
		{"negative age weighs one", -3, 20, 1},
		{"age equal to half-life constant", 10, 10, math.Exp(-1)},
		{"density constant", 5, DensityHalfLifeMinutes, math.Exp(-1)},
		{"activity constant", 40, ActivityHalfLifeMinutes, math.Exp(-2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Decay(tt.age, tt.halfLife), 1e-12)
		})
	}
}

func TestDecay_Monotonic(t *testing.T) {
	for _, halfLife := range []float64{DensityHalfLifeMinutes, ActivityHalfLifeMinutes, InterestHalfLifeMinutes} {
		prev := Decay(0, halfLife)
		for age := 0.5; age <= 180; age += 0.5 {
			current := Decay(age, halfLife)
			assert.LessOrEqual(t, current, prev, "half-life %v, age %v", halfLife, age)
			assert.Greater(t, current, 0.0)
			prev = current
		}
	}
}

func TestWithinWindow(t *testing.T) {
	assert.True(t, withinWindow(testNow, testNow.Add(-10*time.Minute), 10*time.Minute))
	assert.False(t, withinWindow(testNow, testNow.Add(-10*time.Minute-time.Second), 10*time.Minute))
	assert.True(t, withinWindow(testNow, testNow.Add(time.Minute), 10*time.Minute))
	assert.False(t, withinWindow(testNow, time.Time{}, 1000*time.Hour))
}
