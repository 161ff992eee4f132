package ranking

import (
	"time"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/service/geo"
)

const (
	// RisingWindow is the burst window used for the rising flag and the activity bonus
	RisingWindow = 15 * time.Minute

	// RisingThreshold is the number of members inside RisingWindow that marks a place as rising
	RisingThreshold = 3

	// MaxContributionsPerUser caps one user's contributions to a place's activity
	MaxContributionsPerUser = 3

	distinctUserBonus   = 0.5
	recentActivityBonus = 0.3
	liveCaptureBoost    = 2.0
	verifiedBoost       = 1.2
)

// ScoredGroup carries the raw signals and flags computed for one place group
type ScoredGroup struct {
	Group     PlaceGroup
	Raw       hotplace.Signals
	UserCount int
	Rising    bool
	Verified  bool
}

// ScoreGroup computes the density, activity and interest signals of a group
func ScoreGroup(now time.Time, g PlaceGroup, interest InterestIndex, opts Options) ScoredGroup {
	return ScoredGroup{
		Group: g,
		Raw: hotplace.Signals{
			Density:  densityScore(now, g, opts),
			Activity: activityScore(now, g, opts),
			Interest: interest.For(g.Key),
		},
		UserCount: distinctUsers(g.Members),
		Rising:    isRising(now, g.Members),
		Verified:  anyVerified(g.Members),
	}
}

// densityScore rewards fresh members near the center plus distinct-user spread
func densityScore(now time.Time, g PlaceGroup, opts Options) float64 {
	radiusKm := opts.RadiusMeters / 1000
	users := make(map[string]struct{})

	var score float64
	for _, m := range g.Members {
		if !withinWindow(now, m.Timestamp, opts.DensityWindow) {
			continue
		}
		if !geo.WithinRadiusKm(*m.Coordinates, g.Center, radiusKm) {
			continue
		}

		score += Decay(ageMinutes(now, m.Timestamp), DensityHalfLifeMinutes)
		if m.UserID != "" {
			users[m.UserID] = struct{}{}
		}
	}

	return score + float64(len(users))*distinctUserBonus
}

// activityScore sums boosted upload momentum, counting at most
// MaxContributionsPerUser members per user in input order
func activityScore(now time.Time, g PlaceGroup, opts Options) float64 {
	perUser := make(map[string]int)

	var score float64
	recent := 0
	for _, m := range g.Members {
		if !withinWindow(now, m.Timestamp, opts.ActivityWindow) {
			continue
		}

		if m.UserID != "" {
			perUser[m.UserID]++
			if perUser[m.UserID] > MaxContributionsPerUser {
				continue
			}
		}

		boost := 1.0
		if IsLiveCapture(m) {
			boost *= liveCaptureBoost
		}
		if IsVerified(m) {
			boost *= verifiedBoost
		}

		score += Decay(ageMinutes(now, m.Timestamp), ActivityHalfLifeMinutes) * boost
		if withinWindow(now, m.Timestamp, RisingWindow) {
			recent++
		}
	}

	return score + float64(recent)*recentActivityBonus
}

func isRising(now time.Time, members []hotplace.Observation) bool {
	n := 0
	for _, m := range members {
		if withinWindow(now, m.Timestamp, RisingWindow) {
			n++
		}
	}
	return n >= RisingThreshold
}

func anyVerified(members []hotplace.Observation) bool {
	for _, m := range members {
		if IsVerified(m) {
			return true
		}
	}
	return false
}

func distinctUsers(members []hotplace.Observation) int {
	users := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.UserID != "" {
			users[m.UserID] = struct{}{}
		}
	}
	return len(users)
}
