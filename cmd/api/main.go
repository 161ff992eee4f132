// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"livejourney/internal/adapter/events"
	"livejourney/internal/adapter/media"
	"livejourney/internal/adapter/storage"
	"livejourney/internal/config"
	"livejourney/internal/domain/hotplace"
	"livejourney/internal/logging"
	"livejourney/internal/server"
	"livejourney/internal/server/handlers"
	"livejourney/internal/service/listening"
	"livejourney/internal/service/ranking"
)

func main() {
	// Optional .env file for local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	for _, warning := range cfg.Warnings() {
		logging.Warn().Msg(warning)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := storage.EnsureSchema(ctx, db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to prepare database schema")
	}

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer natsConn.Close()

	// Initialize storage adapters
	observationStore := storage.NewObservationStore(db)
	searchStore := storage.NewSearchStore(db)

	// Initialize hot place detector
	detector := listening.NewHotPlaceDetector(
		observationStore,
		searchStore,
		natsConn,
		listening.HotPlaceDetectorConfig{
			Ranking:             rankingOptions(cfg.HotPlace, media.NewURLResolver(cfg.Media.BaseURL)),
			RefreshInterval:     cfg.HotPlace.RefreshInterval,
			ObservationLookback: cfg.HotPlace.ObservationLookback,
			SearchLookback:      cfg.HotPlace.SearchLookback,
			EventsTopic:         cfg.HotPlace.EventsTopic,
			ShardByRegion:       cfg.HotPlace.ShardByRegion,
			MaxConcurrentShards: cfg.HotPlace.MaxConcurrentShards,
		},
	)

	// Log a summary of every ranking pass
	_ = detector.RegisterHandler(func(places []hotplace.HotPlace) error {
		if len(places) > 0 {
			logging.Info().
				Int("places", len(places)).
				Str("top", places[0].Key).
				Int("heat", places[0].Heat()).
				Msg("Hot places ranked")
		}
		return nil
	})

	// Start the hot place detector
	if err := detector.Start(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start hot place detector")
	}

	// Start consuming ingestion events
	ingester := events.NewIngester(observationStore, searchStore)
	subscriber := events.NewSubscriber(natsConn, ingester, events.SubscriberConfig{
		ObservationSubject: cfg.NATS.ObservationSubject,
		SearchSubject:      cfg.NATS.SearchSubject,
	})
	if err := subscriber.Start(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start event subscriber")
	}

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		detector,
		ingester,
		handlers.NewNATSFeed(natsConn, detector.RankedSubject()),
	)

	// Start HTTP server
	go func() {
		logging.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logging.Info().Msg("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop consuming events
	if err := subscriber.Stop(); err != nil {
		logging.Error().Err(err).Msg("Event subscriber shutdown error")
	}

	// Stop hot place detector
	if err := detector.Stop(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Hot place detector shutdown error")
	}

	logging.Info().Msg("Shutdown complete")
}

// rankingOptions maps configuration onto engine options
func rankingOptions(cfg config.HotPlaceConfig, resolver hotplace.MediaResolver) ranking.Options {
	return ranking.Options{
		RadiusMeters:   cfg.RadiusMeters,
		DensityWindow:  cfg.DensityWindow,
		ActivityWindow: cfg.ActivityWindow,
		InterestWindow: cfg.InterestWindow,
		Weights: ranking.Weights{
			Density:  cfg.WeightDensity,
			Activity: cfg.WeightActivity,
			Interest: cfg.WeightInterest,
		},
		Media: resolver,
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("livejourney-hotplaces"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
