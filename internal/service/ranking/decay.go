package ranking

import (
	"math"
	"time"
)

// Half-life constants (in minutes) for each signal
const (
	DensityHalfLifeMinutes  = 5.0
	ActivityHalfLifeMinutes = 20.0
	InterestHalfLifeMinutes = 10.0
)

// Decay converts an age into a weight in (0,1] using exp(-age/halfLife).
// Non-positive ages weigh exactly 1.
func Decay(ageMinutes, halfLifeMinutes float64) float64 {
	if ageMinutes <= 0 {
		return 1
	}
	return math.Exp(-ageMinutes / halfLifeMinutes)
}

func ageMinutes(now, t time.Time) float64 {
	return now.Sub(t).Minutes()
}

// withinWindow reports whether t is known and no older than window at now
func withinWindow(now, t time.Time, window time.Duration) bool {
	if t.IsZero() {
		return false
	}
	return now.Sub(t) <= window
}
