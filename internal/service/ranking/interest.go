package ranking

import (
	"sort"
	"strings"
	"time"

	"livejourney/internal/domain/hotplace"
)

// AggregateInterest folds search events younger than window into a decayed momentum
// per lower-cased term
func AggregateInterest(now time.Time, searches []hotplace.SearchEvent, window time.Duration) map[string]float64 {
	interest := make(map[string]float64)

	for _, e := range searches {
		if e.Term == "" || !withinWindow(now, e.Timestamp, window) {
			continue
		}
		term := strings.ToLower(e.Term)
		interest[term] += Decay(ageMinutes(now, e.Timestamp), InterestHalfLifeMinutes)
	}

	return interest
}

type termMomentum struct {
	term     string
	momentum float64
}

// InterestIndex matches place keys against aggregated search terms.
// Terms are kept sorted so sums are reproducible.
type InterestIndex struct {
	terms []termMomentum
}

// NewInterestIndex builds an index from the output of AggregateInterest
func NewInterestIndex(interest map[string]float64) InterestIndex {
	terms := make([]termMomentum, 0, len(interest))
	for term, momentum := range interest {
		terms = append(terms, termMomentum{term: term, momentum: momentum})
	}
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].term < terms[j].term
	})
	return InterestIndex{terms: terms}
}

// For sums the momentum of every term that contains, or is contained in, the key
func (idx InterestIndex) For(key string) float64 {
	keyLower := strings.ToLower(key)

	var total float64
	for _, t := range idx.terms {
		if strings.Contains(keyLower, t.term) || strings.Contains(t.term, keyLower) {
			total += t.momentum
		}
	}
	return total
}
