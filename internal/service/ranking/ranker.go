package ranking

import (
	"math"
	"sort"
	"time"

	"livejourney/internal/domain/hotplace"
)

// Weights combines normalized signals into the composite score
type Weights struct {
	Density  float64
	Activity float64
	Interest float64
}

// Options configures a ranking pass. Non-positive radius and windows fall back to
// DefaultOptions; Weights are always used as given, so start from DefaultOptions
// to get the standard mix.
type Options struct {
	RadiusMeters   float64
	DensityWindow  time.Duration
	ActivityWindow time.Duration
	InterestWindow time.Duration
	Weights        Weights

	// Media resolves representative images; nil keeps references unchanged
	Media hotplace.MediaResolver
}

// DefaultOptions returns the standard ranking configuration
func DefaultOptions() Options {
	return Options{
		RadiusMeters:   300,
		DensityWindow:  10 * time.Minute,
		ActivityWindow: 60 * time.Minute,
		InterestWindow: 15 * time.Minute,
		Weights: Weights{
			Density:  0.4,
			Activity: 0.4,
			Interest: 0.2,
		},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()

	if o.RadiusMeters <= 0 {
		o.RadiusMeters = def.RadiusMeters
	}
	if o.DensityWindow <= 0 {
		o.DensityWindow = def.DensityWindow
	}
	if o.ActivityWindow <= 0 {
		o.ActivityWindow = def.ActivityWindow
	}
	if o.InterestWindow <= 0 {
		o.InterestWindow = def.InterestWindow
	}
	return o
}

// ComputeHotPlaces ranks the places found in observations at the instant now.
// The result is sorted by descending score; ties keep first-appearance order.
func ComputeHotPlaces(now time.Time, observations []hotplace.Observation, searches []hotplace.SearchEvent, opts Options) []hotplace.HotPlace {
	opts = opts.withDefaults()

	groups := GroupObservations(now, observations, opts.ActivityWindow)
	if len(groups) == 0 {
		return []hotplace.HotPlace{}
	}

	interest := NewInterestIndex(AggregateInterest(now, searches, opts.InterestWindow))

	scored := make([]ScoredGroup, len(groups))
	var peak hotplace.Signals
	for i, g := range groups {
		scored[i] = ScoreGroup(now, g, interest, opts)
		peak.Density = math.Max(peak.Density, scored[i].Raw.Density)
		peak.Activity = math.Max(peak.Activity, scored[i].Raw.Activity)
		peak.Interest = math.Max(peak.Interest, scored[i].Raw.Interest)
	}

	places := make([]hotplace.HotPlace, len(scored))
	for i, s := range scored {
		norm := hotplace.Signals{
			Density:  normalizeByMax(s.Raw.Density, peak.Density),
			Activity: normalizeByMax(s.Raw.Activity, peak.Activity),
			Interest: normalizeByMax(s.Raw.Interest, peak.Interest),
		}

		first := s.Group.Members[0]
		places[i] = hotplace.HotPlace{
			Key:                 s.Group.Key,
			Region:              first.Region,
			Center:              s.Group.Center,
			RepresentativeImage: representativeImage(first, opts.Media),
			RawSignals:          s.Raw,
			NormalizedSignals:   norm,
			Score:               compositeScore(norm, opts.Weights),
			PostCount:           len(s.Group.Members),
			UserCount:           s.UserCount,
			Rising:              s.Rising,
			Verified:            s.Verified,
		}
	}

	sort.SliceStable(places, func(i, j int) bool {
		return places[i].Score > places[j].Score
	})

	return places
}

func normalizeByMax(value, peak float64) float64 {
	if peak > 0 {
		return value / peak
	}
	return 0
}

func compositeScore(n hotplace.Signals, w Weights) float64 {
	return w.Density*n.Density + w.Activity*n.Activity + w.Interest*n.Interest
}

func representativeImage(o hotplace.Observation, media hotplace.MediaResolver) string {
	if len(o.Media) == 0 {
		return ""
	}
	if media == nil {
		return o.Media[0]
	}
	return media.ResolveURL(o.Media[0])
}
