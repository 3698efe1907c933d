// Package main provides the entrypoint for the TripMate API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/api"
	"github.com/tripmate/tripmate/internal/api/handler"
	"github.com/tripmate/tripmate/internal/api/middleware"
	"github.com/tripmate/tripmate/internal/app"
	"github.com/tripmate/tripmate/internal/auth"
	"github.com/tripmate/tripmate/internal/config"
	"github.com/tripmate/tripmate/internal/telemetry"
	"github.com/tripmate/tripmate/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripmate-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripMate API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build services")
		os.Exit(1)
	}
	defer func() {
		if closeErr := components.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close services")
		}
	}()

	routerCfg := api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		RequireTLS:         cfg.RequireTLS,
		Planner:            components.Planner,
		Trips:              components.Trips,
		FeatureFlagService: components.Flags,
		Providers:          components.Providers,
		DefaultCurrency:    cfg.DefaultCurrency,
	}

	if cfg.Auth.SigningKey != "" {
		routerCfg.TokenValidator = auth.NewJWTService(auth.JWTConfig{
			SigningKey: cfg.Auth.SigningKey,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
		})
		log.Info().Msg("bearer auth enabled")
	} else {
		log.Warn().Msg("JWT_SIGNING_KEY not set - plan endpoints are anonymous and admin endpoints are disabled")
	}

	if cfg.PubSub.Enabled() {
		publisher, pubErr := worker.NewPublisher(ctx, worker.PublisherConfig{
			ProjectID: cfg.PubSub.ProjectID,
			Topic:     cfg.PubSub.Topic,
		})
		if pubErr != nil {
			log.Error().Err(pubErr).Msg("failed to create pubsub publisher")
			os.Exit(1)
		}
		defer publisher.Close()
		routerCfg.Publisher = handler.JobPublisher(publisher)
		log.Info().Str("topic", cfg.PubSub.Topic).Msg("queued plan generation enabled")
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     api.NewRouter(routerCfg),
		ReadTimeout: 15 * time.Second,
		// Synchronous generation may run every tier back to back.
		WriteTimeout: 3*cfg.AI.ProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
