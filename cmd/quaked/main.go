package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/seismoindia/quake-data-service/internal/adapter/http"
	kafkaadapter "github.com/seismoindia/quake-data-service/internal/adapter/kafka"
	"github.com/seismoindia/quake-data-service/internal/adapter/mapbox"
	"github.com/seismoindia/quake-data-service/internal/adapter/postgres"
	"github.com/seismoindia/quake-data-service/internal/adapter/sms"
	"github.com/seismoindia/quake-data-service/internal/adapter/usgs"
	"github.com/seismoindia/quake-data-service/internal/config"
	"github.com/seismoindia/quake-data-service/internal/domain"
	"github.com/seismoindia/quake-data-service/internal/observability"
	"github.com/seismoindia/quake-data-service/internal/pipeline"
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

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := postgres.NewStore(pool, cfg.BatchSize, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Reverse geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	feed := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, logger)
	transformer := pipeline.NewTransformer(geocoder, cfg.HistoricalAge, logger)

	var alertWriter *kafkaadapter.AlertWriter
	var alerts pipeline.AlertPublisher
	if cfg.KafkaEnabled() {
		alertWriter = kafkaadapter.NewAlertWriter(cfg, logger)
		alerts = alertWriter
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic, "min_magnitude", cfg.AlertMinMagnitude)
	}

	p := pipeline.New(feed, transformer, store, alerts, logger, metrics, pipeline.Options{
		PollInterval:      cfg.PollInterval,
		Lookback:          cfg.PollLookback,
		FetchLimit:        cfg.FetchLimit,
		MinMagnitude:      cfg.MinMagnitude,
		AlertMinMagnitude: cfg.AlertMinMagnitude,
	})

	smsProvider := sms.FromConfig(cfg, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, store, smsProvider, p, metrics, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingestion pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("alert writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
