// Package main provides the entrypoint for the TripMate background worker.
// It consumes queued plan jobs from Pub/Sub and periodically prewarms the
// geo and weather caches.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/app"
	"github.com/tripmate/tripmate/internal/config"
	"github.com/tripmate/tripmate/internal/telemetry"
	"github.com/tripmate/tripmate/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripmate-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting TripMate worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build services")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	defer func() {
		if closeErr := components.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close services")
		}
	}()

	prewarmCfg := worker.DefaultPrewarmConfig()
	prewarmCfg.Concurrency = cfg.Worker.PrewarmConcurrency
	prewarmCfg.WarmWeather = components.Weather.HasProvider()
	prewarm := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:  prewarmCfg,
		Logger:  log.With().Str("job", worker.JobPrewarm).Logger(),
		Geo:     components.Geo,
		Weather: components.Weather,
	})

	processor := worker.NewProcessor(worker.ProcessorConfig{
		Generator: components.Planner,
		Trips:     components.Trips,
		Prewarm:   prewarm,
		Logger:    log,
	})

	// Cloud Run needs a listening port even for workers.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, map[string]any{"status": "healthy", "version": Version})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, pingCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer pingCancel()
		if err := components.Trips.Ping(pingCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ready", "prewarm": prewarm.GetMetrics()})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	if cfg.PubSub.Enabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:              cfg.PubSub.ProjectID,
			SubscriptionName:       cfg.PubSub.Subscription,
			Processor:              processor,
			Logger:                 log,
			MaxOutstandingMessages: cfg.Worker.MaxOutstanding,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to create pubsub handler")
			os.Exit(1)
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - queued plans will not be processed")
	}

	if cfg.Worker.PrewarmInterval > 0 {
		go runPrewarmLoop(ctx, prewarm, cfg.Worker.PrewarmInterval, log)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// runPrewarmLoop warms the caches once at startup and then on every tick.
func runPrewarmLoop(ctx context.Context, job *worker.PrewarmJob, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result := job.Run(ctx, nil)
		if result.Failed > 0 {
			log.Warn().
				Int("failed", result.Failed).
				Int("total", result.Total).
				Msg("prewarm finished with failures")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func writeStatus(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
