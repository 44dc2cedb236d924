package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/marshalhq/event-coordination-backend/internal/api/rest"
	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/cache"
	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/config"
	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/database"
	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/repository"
	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/telemetry"
	checklistsvc "github.com/marshalhq/event-coordination-backend/internal/service/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/service/scoping"
	"github.com/marshalhq/event-coordination-backend/internal/service/sharing"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create zap logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "event-coordination-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.OTLPEndpoint != "",
		SamplingRate:   cfg.Telemetry.SampleRate,
		ExportTimeout:  30 * time.Second,
		BatchTimeout:   5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewConnectionPool(&cfg.Database, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisCache.Close()

	go collectPoolMetrics(ctx, pool)

	db := pool.Pool()
	marshals := repository.NewMarshalRepository(db)
	checkpoints := repository.NewCheckpointRepository(db)
	areas := repository.NewAreaRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	areaRoles := repository.NewAreaRoleRepository(db)
	items := repository.NewItemRepository(db)
	completions := repository.NewCompletionRepository(db)
	notes := repository.NewNoteRepository(db)
	contacts := repository.NewContactRepository(db)

	migrator := scoping.NewRoleMigrator(areas, areaRoles, redisCache, 24*time.Hour, logger)
	contexts := scoping.NewContextBuilder(marshals, assignments, checkpoints, areas, areaRoles, migrator, logger)
	bridge := checklistsvc.NewCheckInBridge(assignments, completions)
	checklistService := checklistsvc.NewService(items, completions, contexts, bridge, logger)
	sharingService := sharing.NewService(notes, contacts, contexts, logger)

	hub := rest.NewWebSocketHub(logger)
	handler := rest.NewHandler(checklistService, sharingService, hub, logger)
	auth := rest.NewAuthMiddleware(&rest.AuthConfig{
		JWTSecret:   []byte(cfg.Security.JWTSecret),
		TokenExpiry: cfg.Security.TokenExpiry,
		Issuer:      "event-coordination-backend",
	})
	health := rest.NewHealthHandler(cfg.Version, map[string]rest.Pinger{
		"database": pool,
		"redis":    redisCache,
	})

	router := rest.NewRouter(&rest.RouterConfig{
		Handler:       handler,
		Auth:          auth,
		Health:        health,
		Hub:           hub,
		Logger:        logger,
		RateLimit:     cfg.Security.RateLimit.RequestsPerSecond,
		RateBurst:     cfg.Security.RateLimit.BurstSize,
		EnableMetrics: true,
	})

	server := rest.NewServer(&cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
