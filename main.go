package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lotcheck/api"
	"lotcheck/batch"
	"lotcheck/common"
	"lotcheck/config"
	"lotcheck/logger"
	"lotcheck/market"
	"lotcheck/metrics"
	"lotcheck/shared/kafka"
	"lotcheck/storage"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// The logger level comes from config, so report this one directly.
		logger.Must(logger.Config{Level: config.DefaultLogLevel}).Fatal("Invalid configuration", logger.Error(err))
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		logger.Must(logger.Config{}).Fatal("Failed to create logger", logger.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// User store
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := storage.Open(startCtx, cfg.Database.URL)
	if err != nil {
		cancel()
		log.Fatal("Failed to connect to database", logger.Error(err))
	}
	defer db.Close()
	users := storage.NewUsers(db)
	if err := users.EnsureSchema(startCtx); err != nil {
		cancel()
		log.Fatal("Failed to prepare schema", logger.Error(err))
	}
	cancel()

	// Item lookups, optionally behind the snapshot cache
	var fetcher market.ItemFetcher = market.NewClient(cfg.Market, log.With(logger.String("component", "market")), m)
	if cfg.Redis.Enabled() {
		cache, err := market.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Snapshot cache disabled", logger.String("addr", cfg.Redis.Addr), logger.Error(err))
		} else {
			defer cache.Close()
			fetcher = market.NewCachingFetcher(fetcher, cache, log, m)
			log.Info("Snapshot cache enabled", logger.String("addr", cfg.Redis.Addr), logger.Duration("ttl", cfg.Redis.TTL))
		}
	}

	sinks, closeSinks := initializeSinks(ctx, cfg, log)
	defer closeSinks()

	var sink batch.Sink
	if sinks.Len() > 0 {
		sink = sinks
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(api.Dependencies{
		Users:     users,
		Database:  users,
		Processor: batch.NewProcessor(fetcher, log, m),
		Sink:      sink,
		Metrics:   m,
		Log:       log,
		MaxLinks:  cfg.MaxLinks,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting API server",
			logger.String("addr", httpServer.Addr),
			logger.String("market_api", cfg.Market.BaseURL),
			logger.Int("max_links", cfg.MaxLinks),
			logger.Int("report_sinks", sinks.Len()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", logger.Error(err))
	}
	if err := srv.Wait(shutdownCtx); err != nil {
		log.Warn("Report sinks still running at exit", logger.Error(err))
	}
	log.Info("Server stopped")
}

// initializeSinks wires the optional S3 archive and Kafka event sinks.
// Either one failing to start only disables that sink.
func initializeSinks(ctx context.Context, cfg *config.Config, log logger.Logger) (*batch.Sinks, func()) {
	var named []batch.NamedSink
	var closers []func()

	if cfg.S3.Enabled() {
		s3c, err := common.NewS3(ctx, cfg.S3)
		if err != nil {
			log.Warn("Failed to init S3 client, report archive disabled", logger.Error(err))
		} else {
			archiver := common.NewReportArchiver(s3c, cfg.S3.Bucket, cfg.S3.Prefix, log)
			named = append(named, batch.NamedSink{Name: "s3", Sink: archiver})
			log.Info("Report archive enabled", logger.String("bucket", cfg.S3.Bucket), logger.String("prefix", cfg.S3.Prefix))
		}
	}

	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, log)
		if err != nil {
			log.Warn("Failed to create Kafka producer, batch events disabled", logger.Error(err))
		} else {
			named = append(named, batch.NamedSink{Name: "kafka", Sink: producer})
			closers = append(closers, func() {
				if err := producer.Close(); err != nil {
					log.Warn("Kafka producer close error", logger.Error(err))
				}
			})
			log.Info("Batch events enabled", logger.Strings("brokers", cfg.Kafka.Brokers), logger.String("topic", cfg.Kafka.Topic))
		}
	}

	return batch.NewSinks(log, named...), func() {
		for _, c := range closers {
			c()
		}
	}
}
