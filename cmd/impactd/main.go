package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/neo-impact-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/neo-impact-service/internal/adapter/kafka"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/llm"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/neows"
	"github.com/couchcryptid/neo-impact-service/internal/assistant"
	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
	"github.com/couchcryptid/neo-impact-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Catalog: NeoWs (feature-flagged via NASA_API_KEY), then the local file,
	// then generated samples.
	var sources []catalog.Source
	if cfg.NASAEnabled() {
		sources = append(sources, neows.NewClient(cfg.NASAAPIKey, cfg.NASABaseURL, cfg.NEOPageSize, cfg.NASATimeout, metrics, logger))
		logger.Info("neows catalog enabled", "page_size", cfg.NEOPageSize, "timeout", cfg.NASATimeout)
	} else {
		logger.Info("neows catalog disabled")
	}
	sources = append(sources, catalog.FileSource{Path: cfg.AsteroidsFile}, catalog.SampleSource{})
	cat := catalog.NewCache(catalog.NewChain(logger, metrics, sources...), cfg.CatalogCacheTTL, nil, logger, metrics)

	// Assistant (feature-flagged via GROQ_API_KEY).
	var completer assistant.Completer
	if cfg.LLMEnabled() {
		completer = llm.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.LLMTimeout, metrics, logger)
	} else {
		logger.Info("llm disabled, serving canned answers")
	}
	helper := assistant.New(completer, cfg.LLMMaxTokens, metrics, logger)

	// Assessment relay (feature-flagged via KAFKA_BROKERS).
	var (
		sink   httpadapter.AssessmentSink
		writer *kafkaadapter.Writer
		relay  *pipeline.Relay
	)
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		relay = pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		sink = relay
		logger.Info("assessment publishing enabled", "topic", cfg.KafkaImpactTopic, "brokers", cfg.KafkaBrokers)
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		GameOrigin:     cfg.GameOrigin,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Catalog:        cat,
		Assistant:      helper,
		Sink:           sink,
		Ready:          cat,
		Metrics:        metrics,
		Logger:         logger,
	})

	// Warm the catalog so readiness flips without waiting for the first request.
	go func() {
		if _, err := cat.Asteroids(ctx); err != nil {
			logger.Warn("catalog warm-up failed", "error", err)
		}
	}()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start assessment relay. It outlives the signal context so assessments
	// from requests still draining are flushed.
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	var wg sync.WaitGroup
	if relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := relay.Run(relayCtx); err != nil {
				logger.Error("relay error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	stopRelay()
	wg.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
