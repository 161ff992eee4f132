package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking pass metrics
	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotplace_ranking_duration_seconds",
			Help:    "Duration of hot place ranking passes in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RankingPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotplace_ranking_passes_total",
			Help: "Total number of ranking passes by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	RankedPlaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotplace_ranked_places",
			Help: "Number of places in the latest ranking",
		},
	)

	RisingPlaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotplace_rising_places",
			Help: "Number of rising places in the latest ranking",
		},
	)

	SnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotplace_snapshot_events",
			Help: "Number of events loaded into the latest ranking snapshot",
		},
		[]string{"kind"}, // "observation", "search"
	)

	// Ingestion metrics
	IngestedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotplace_ingested_events_total",
			Help: "Total number of ingested events by kind, transport and outcome",
		},
		[]string{"kind", "transport", "status"},
	)

	// HTTP metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotplace_api_requests_total",
			Help: "Total number of API requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotplace_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotplace_feed_clients",
			Help: "Number of connected websocket ranking feed clients",
		},
	)
)

// RecordRankingPass records the outcome of one ranking pass
func RecordRankingPass(duration time.Duration, places, rising int, err error) {
	RankingDuration.Observe(duration.Seconds())
	if err != nil {
		RankingPasses.WithLabelValues("error").Inc()
		return
	}
	RankingPasses.WithLabelValues("success").Inc()
	RankedPlaces.Set(float64(places))
	RisingPlaces.Set(float64(rising))
}

// RecordSnapshot records how many events a ranking pass consumed
func RecordSnapshot(observations, searches int) {
	SnapshotSize.WithLabelValues("observation").Set(float64(observations))
	SnapshotSize.WithLabelValues("search").Set(float64(searches))
}

// RecordIngest records one ingested event
func RecordIngest(kind, transport string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	IngestedEvents.WithLabelValues(kind, transport, status).Inc()
}

// RecordAPIRequest records one served HTTP request
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackFeedClient adjusts the connected feed client gauge
func TrackFeedClient(connected bool) {
	if connected {
		FeedClients.Inc()
	} else {
		FeedClients.Dec()
	}
}
