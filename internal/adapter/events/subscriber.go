// internal/adapter/events/subscriber.go

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/logging"
)

// SubscriberConfig contains the subjects consumed by the subscriber
type SubscriberConfig struct {
	ObservationSubject string
	SearchSubject      string
	HandlerTimeout     time.Duration
}

// Subscriber consumes ingestion events from NATS
type Subscriber struct {
	conn     *nats.Conn
	ingester *Ingester
	config   SubscriberConfig
	logger   zerolog.Logger
	subs     []*nats.Subscription
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSubscriber creates a new NATS ingestion subscriber
func NewSubscriber(conn *nats.Conn, ingester *Ingester, config SubscriberConfig) *Subscriber {
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = 5 * time.Second
	}

	return &Subscriber{
		conn:     conn,
		ingester: ingester,
		config:   config,
		logger:   logging.With().Str("component", "event_subscriber").Logger(),
	}
}

// Start subscribes to the observation and search subjects
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("subscriber already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	obsSub, err := s.conn.Subscribe(s.config.ObservationSubject, s.handleObservation)
	if err != nil {
		s.cancel()
		s.cancel = nil
		return fmt.Errorf("error subscribing to %s: %w", s.config.ObservationSubject, err)
	}
	s.subs = append(s.subs, obsSub)

	searchSub, err := s.conn.Subscribe(s.config.SearchSubject, s.handleSearch)
	if err != nil {
		_ = obsSub.Unsubscribe()
		s.subs = nil
		s.cancel()
		s.cancel = nil
		return fmt.Errorf("error subscribing to %s: %w", s.config.SearchSubject, err)
	}
	s.subs = append(s.subs, searchSub)

	s.logger.Info().
		Str("observation_subject", s.config.ObservationSubject).
		Str("search_subject", s.config.SearchSubject).
		Msg("Event subscriber started")

	return nil
}

// Stop drains the subscriptions
func (s *Subscriber) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	s.subs = nil

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	return errors.Join(errs...)
}

func (s *Subscriber) handleObservation(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(s.ctx, s.config.HandlerTimeout)
	defer cancel()

	o, err := s.ingester.IngestObservation(ctx, TransportNATS, msg.Data)
	if err != nil {
		s.logEventError(msg.Subject, err)
		return
	}

	s.logger.Debug().
		Str("id", o.ID).
		Str("place", o.PlaceKey()).
		Msg("Observation ingested")
}

func (s *Subscriber) handleSearch(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(s.ctx, s.config.HandlerTimeout)
	defer cancel()

	e, err := s.ingester.IngestSearch(ctx, TransportNATS, msg.Data)
	if err != nil {
		s.logEventError(msg.Subject, err)
		return
	}

	s.logger.Debug().
		Str("id", e.ID).
		Str("term", e.Term).
		Msg("Search event ingested")
}

func (s *Subscriber) logEventError(subject string, err error) {
	if errors.Is(err, hotplace.ErrInvalidEvent) {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("Dropping invalid event")
		return
	}
	s.logger.Error().Err(err).Str("subject", subject).Msg("Failed to ingest event")
}
