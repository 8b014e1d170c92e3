package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/cache"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/config"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/history"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/hub"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/logger"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/matchcontext"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/processor"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/store"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/sports/soccer"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New("value-engine", cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("value engine stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("🚀 Starting Value Engine...")

	soccerCfg, err := soccer.NewConfig()
	if err != nil {
		return fmt.Errorf("invalid valuation config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis carries the snapshot feed, the valuation streams and the analysis cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✓ Connected to Redis", zap.String("addr", cfg.Redis.URL))

	// Historical archive: Postgres when configured, otherwise empty
	var archiveSource contracts.ArchiveSource = store.NewStaticSource(nil)
	if cfg.Archive.DSN != "" {
		archiveDB, err := store.NewArchiveDB(cfg.Archive.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to archive: %w", err)
		}
		defer archiveDB.Close()
		archiveSource = archiveDB
		log.Info("✓ Connected to archive database")
	} else {
		log.Warn("ARCHIVE_DSN not set, match context will have no history")
	}

	// Publishers: Redis Streams always, Kafka when brokers are configured
	publishers := []contracts.ValuationPublisher{
		publisher.NewStreamPublisher(redisClient, cfg.Stream.ValuationsStream),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publishers = append(publishers, publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log))
	}
	valuationPublisher := publisher.NewMulti(publishers...)
	defer valuationPublisher.Close()

	engine := valuation.NewEngine(valuation.Options{
		AllowedBookmakers: soccerCfg.AllowedBookmakers,
		Chain:             referenceChain(soccerCfg.ReferenceChain),
		Kelly: valuation.KellySettings{
			Multiplier:        soccerCfg.KellyMultiplier,
			MaxPct:            soccerCfg.KellyMaxPct,
			ProbabilitySource: soccerCfg.KellyProbabilitySource,
		},
	})

	m := metrics.New()

	h := hub.NewHub(soccerCfg.MinEdgePct, m, log)
	go h.Run(ctx)

	archives := history.NewProvider(archiveSource, history.DefaultRefreshInterval)
	analysisCache := cache.NewRedisCache(redisClient, 4*soccerCfg.AnalysisMaxAge)
	contexts := matchcontext.NewBuilder(engine, archives, analysisCache, soccerCfg.AnalysisMaxAge, m, log)

	// Snapshot consumption
	streamConsumer := consumer.NewStreamConsumer(redisClient, cfg.Stream.ConsumerID, cfg.Stream.ConsumerGroup, log)
	messages, streamErrors := streamConsumer.Consume(ctx, cfg.Stream.SnapshotStreams)
	go func() {
		for err := range streamErrors {
			log.Warn("stream error", zap.Error(err))
			m.RecordError(metrics.StageConsume)
		}
	}()

	proc := processor.New(engine, valuationPublisher, h, streamConsumer, m, log, processor.Config{
		Workers:    cfg.Stream.Workers,
		MinEdgePct: soccerCfg.MinEdgePct,
	})
	procDone := make(chan struct{})
	go func() {
		proc.Run(ctx, messages)
		close(procDone)
	}()

	// HTTP API
	handler := handlers.NewHandler(ctx, engine, archives, contexts, h, soccerCfg, log)
	handler.AddHealthCheck("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	handler.AddHealthCheck("archive", archiveSource.Ping)

	router := handlers.NewRouter(handler, handlers.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     m.Handler(),
		RateLimiter: handlers.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("✓ Value Engine listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Strings("streams", cfg.Stream.SnapshotStreams),
			zap.Int("workers", cfg.Stream.Workers),
			zap.Int("allowed_bookmakers", len(soccerCfg.AllowedBookmakers)),
			zap.Int("reference_links", len(soccerCfg.ReferenceChain)),
			zap.Float64("min_edge_pct", soccerCfg.MinEdgePct),
			zap.Float64("kelly_multiplier", soccerCfg.KellyMultiplier),
			zap.String("kelly_probability_source", soccerCfg.KellyProbabilitySource))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("🛑 Shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("⚠️  Server shutdown error", zap.Error(err))
	}

	select {
	case <-procDone:
	case <-shutdownCtx.Done():
		log.Warn("⚠️  Processor did not drain before shutdown deadline")
	}

	log.Info("✓ Shutdown complete", zap.Any("processor", proc.Stats()))
	return nil
}

// referenceChain turns configured links into reference candidates, in priority order
func referenceChain(links []soccer.ReferenceLink) []contracts.ReferenceCandidate {
	chain := make([]contracts.ReferenceCandidate, 0, len(links))
	for _, l := range links {
		chain = append(chain, valuation.NewMarketCandidate(l.BookKey, l.MarketKey, l.Source()))
	}
	return chain
}
