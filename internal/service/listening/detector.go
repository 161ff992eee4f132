// internal/service/listening/detector.go

package listening

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/logging"
	"livejourney/internal/metrics"
	"livejourney/internal/service/geo"
	"livejourney/internal/service/ranking"
)

// Publisher publishes raw messages to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// HotPlaceDetectorConfig contains configuration for the hot place detector
type HotPlaceDetectorConfig struct {
	Ranking             ranking.Options
	RefreshInterval     time.Duration
	ObservationLookback time.Duration
	SearchLookback      time.Duration
	EventsTopic         string
	ShardByRegion       bool
	MaxConcurrentShards int
}

// RankedEvent is the payload published after every ranking pass
type RankedEvent struct {
	RankedAt  time.Time           `json:"rankedAt"`
	HotPlaces []hotplace.HotPlace `json:"hotPlaces"`
}

// RisingEvent is the payload published for each rising place
type RisingEvent struct {
	RankedAt time.Time         `json:"rankedAt"`
	HotPlace hotplace.HotPlace `json:"hotPlace"`
	Heat     int               `json:"heat"`
}

// HotPlaceDetector implements the hotplace.Detector interface
type HotPlaceDetector struct {
	observations hotplace.ObservationStore
	searches     hotplace.SearchStore
	eventBus     Publisher
	config       HotPlaceDetectorConfig
	logger       zerolog.Logger
	now          func() time.Time

	handlers []func([]hotplace.HotPlace) error
	mu       sync.RWMutex
	latest   []hotplace.HotPlace
	rankedAt time.Time

	// serializes ranking passes
	refreshMu sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewHotPlaceDetector creates a new hot place detector. eventBus may be nil.
func NewHotPlaceDetector(
	observations hotplace.ObservationStore,
	searches hotplace.SearchStore,
	eventBus Publisher,
	config HotPlaceDetectorConfig,
) *HotPlaceDetector {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 30 * time.Second
	}
	if config.ObservationLookback <= 0 {
		config.ObservationLookback = 48 * time.Hour
	}
	if config.SearchLookback <= 0 {
		config.SearchLookback = 24 * time.Hour
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "hotplace"
	}
	if config.MaxConcurrentShards <= 0 {
		config.MaxConcurrentShards = 8
	}

	return &HotPlaceDetector{
		observations: observations,
		searches:     searches,
		eventBus:     eventBus,
		config:       config,
		logger:       logging.With().Str("component", "hotplace_detector").Logger(),
		now:          time.Now,
		handlers:     []func([]hotplace.HotPlace) error{},
		latest:       []hotplace.HotPlace{},
	}
}

// Start runs an initial ranking pass and then refreshes on a ticker
func (d *HotPlaceDetector) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return errors.New("detector already started")
	}
	d.started = true
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.mu.Unlock()

	if _, err := d.Refresh(d.ctx); err != nil {
		d.logger.Error().Err(err).Msg("Initial ranking pass failed")
	}

	d.wg.Add(1)
	go d.refreshLoop(d.ctx)

	d.logger.Info().
		Dur("interval", d.config.RefreshInterval).
		Bool("shard_by_region", d.config.ShardByRegion).
		Msg("Hot place detector started")

	return nil
}

// Stop cancels the refresh loop and waits for it to exit or for ctx to expire.
// A stopped detector can be started again.
func (d *HotPlaceDetector) Stop(ctx context.Context) error {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.started = false
	d.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterHandler registers a callback invoked after every ranking pass
func (d *HotPlaceDetector) RegisterHandler(handler func([]hotplace.HotPlace) error) error {
	if handler == nil {
		return errors.New("handler is nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers = append(d.handlers, handler)
	return nil
}

// GetHotPlaces returns the latest ranking filtered by the provided criteria
func (d *HotPlaceDetector) GetHotPlaces(ctx context.Context, filter hotplace.Filter) ([]hotplace.HotPlace, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]hotplace.HotPlace, 0, len(d.latest))
	for _, p := range d.latest {
		if !filter.Match(p) {
			continue
		}
		result = append(result, p)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}

	return result, nil
}

// GetHotPlace returns the latest ranked place with the given key
func (d *HotPlaceDetector) GetHotPlace(ctx context.Context, key string) (*hotplace.HotPlace, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.latest {
		if d.latest[i].Key == key {
			p := d.latest[i]
			return &p, nil
		}
	}

	return nil, fmt.Errorf("hot place %q: %w", key, hotplace.ErrNotFound)
}

// RankedAt returns the reference time of the latest ranking pass
func (d *HotPlaceDetector) RankedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rankedAt
}

// Refresh loads fresh snapshots, ranks them and publishes the result
func (d *HotPlaceDetector) Refresh(ctx context.Context) ([]hotplace.HotPlace, error) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	start := time.Now()
	now := d.now()

	places, err := d.rank(ctx, now)
	rising := countRising(places)
	metrics.RecordRankingPass(time.Since(start), len(places), rising, err)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.latest = places
	d.rankedAt = now
	d.mu.Unlock()

	d.logger.Debug().
		Int("places", len(places)).
		Int("rising", rising).
		Dur("took", time.Since(start)).
		Msg("Ranking pass complete")

	if err := d.publishRankedEvent(now, places); err != nil {
		d.logger.Error().Err(err).Msg("Error publishing ranked event")
	}
	for _, p := range places {
		if !p.Rising {
			continue
		}
		if err := d.publishRisingEvent(now, p); err != nil {
			d.logger.Error().Err(err).Str("key", p.Key).Msg("Error publishing rising event")
		}
	}

	d.callHandlers(places)

	out := make([]hotplace.HotPlace, len(places))
	copy(out, places)
	return out, nil
}

// refreshLoop runs ranking passes on the configured interval
func (d *HotPlaceDetector) refreshLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Refresh(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error().Err(err).Msg("Ranking pass failed")
			}
		}
	}
}

// rank loads the snapshots and runs the engine, per region when sharding is enabled
func (d *HotPlaceDetector) rank(ctx context.Context, now time.Time) ([]hotplace.HotPlace, error) {
	observations, err := d.observations.RecentObservations(ctx, now.Add(-d.config.ObservationLookback))
	if err != nil {
		return nil, fmt.Errorf("error loading observations: %w", err)
	}

	searches, err := d.searches.RecentSearchEvents(ctx, now.Add(-d.config.SearchLookback))
	if err != nil {
		return nil, fmt.Errorf("error loading search events: %w", err)
	}

	observations = locatedObservations(observations)
	metrics.RecordSnapshot(len(observations), len(searches))

	if !d.config.ShardByRegion {
		return ranking.ComputeHotPlaces(now, observations, searches, d.config.Ranking), nil
	}

	shards := shardByRegion(observations)
	results := make([][]hotplace.HotPlace, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.MaxConcurrentShards)

	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ranking.ComputeHotPlaces(now, shard, searches, d.config.Ranking)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error ranking shards: %w", err)
	}

	return mergeShards(results), nil
}

// shardByRegion partitions observations by the region of the first observation
// seen for each place key, so that no place is split across shards. Shards and
// their members keep input order.
func shardByRegion(observations []hotplace.Observation) [][]hotplace.Observation {
	regionOfKey := make(map[string]string)
	shardIndex := make(map[string]int)
	var shards [][]hotplace.Observation

	for _, o := range observations {
		key := o.PlaceKey()
		region, ok := regionOfKey[key]
		if !ok {
			region = o.Region
			regionOfKey[key] = region
		}

		idx, ok := shardIndex[region]
		if !ok {
			idx = len(shards)
			shardIndex[region] = idx
			shards = append(shards, nil)
		}
		shards[idx] = append(shards[idx], o)
	}

	return shards
}

// locatedObservations drops observations without a usable WGS84 location
func locatedObservations(observations []hotplace.Observation) []hotplace.Observation {
	out := make([]hotplace.Observation, 0, len(observations))
	for _, o := range observations {
		if o.Coordinates != nil && geo.ValidateLocation(*o.Coordinates) {
			out = append(out, o)
		}
	}
	return out
}

// mergeShards concatenates shard results and re-sorts them by score, keeping
// shard order for ties
func mergeShards(results [][]hotplace.HotPlace) []hotplace.HotPlace {
	merged := []hotplace.HotPlace{}
	for _, r := range results {
		merged = append(merged, r...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	return merged
}

func countRising(places []hotplace.HotPlace) int {
	n := 0
	for _, p := range places {
		if p.Rising {
			n++
		}
	}
	return n
}

// publishRankedEvent publishes the full ranking
func (d *HotPlaceDetector) publishRankedEvent(rankedAt time.Time, places []hotplace.HotPlace) error {
	if d.eventBus == nil {
		return nil
	}

	data, err := json.Marshal(RankedEvent{RankedAt: rankedAt, HotPlaces: places})
	if err != nil {
		return fmt.Errorf("error encoding ranked event: %w", err)
	}

	return d.eventBus.Publish(d.RankedSubject(), data)
}

// publishRisingEvent publishes one rising place
func (d *HotPlaceDetector) publishRisingEvent(rankedAt time.Time, p hotplace.HotPlace) error {
	if d.eventBus == nil {
		return nil
	}

	data, err := json.Marshal(RisingEvent{RankedAt: rankedAt, HotPlace: p, Heat: p.Heat()})
	if err != nil {
		return fmt.Errorf("error encoding rising event: %w", err)
	}

	return d.eventBus.Publish(fmt.Sprintf("%s.rising", d.config.EventsTopic), data)
}

// RankedSubject returns the subject full rankings are published on
func (d *HotPlaceDetector) RankedSubject() string {
	return fmt.Sprintf("%s.ranked", d.config.EventsTopic)
}

// callHandlers calls all registered handlers
func (d *HotPlaceDetector) callHandlers(places []hotplace.HotPlace) {
	d.mu.RLock()
	handlers := make([]func([]hotplace.HotPlace) error, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, handler := range handlers {
		snapshot := make([]hotplace.HotPlace, len(places))
		copy(snapshot, places)
		if err := handler(snapshot); err != nil {
			d.logger.Error().Err(err).Msg("Error in hot place handler")
		}
	}
}

var _ hotplace.Detector = (*HotPlaceDetector)(nil)
