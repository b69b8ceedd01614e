package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/config"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/db"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/events"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/llm"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/logger"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/pipeline"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/search"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/store"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/structurer"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	pool    *pgxpool.Pool
	rdb     *redis.Client // nil when REDIS_URL is unset
	metrics *metrics.Metrics
	opps    *store.Opportunities
	runs    *store.SyncRuns
	gen     llm.Generator
	orch    *pipeline.Orchestrator
}

// loadConfig reads the environment and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// newApp connects to storage and wires the sync pipeline. Close must be
// called when the command ends.
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, metrics: metrics.New(nil)}

	// ── PostgreSQL ──────────────────────────────────────────────────────────
	log.Info("connecting to PostgreSQL")
	a.pool, err = db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("PostgreSQL connected")

	// ── Redis (optional) ────────────────────────────────────────────────────
	a.rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		a.pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	if a.rdb == nil {
		log.Warn("REDIS_URL not set, search cache and sync events disabled")
	} else {
		log.Info("Redis connected")
	}

	// ── Pipeline ────────────────────────────────────────────────────────────
	a.opps = store.NewOpportunities(a.pool)
	a.runs = store.NewSyncRuns(a.pool)

	serp := search.NewSerpClient(search.Options{
		APIKey:  cfg.SerpAPIKey,
		Timeout: cfg.SearchTimeout,
		RPS:     cfg.SearchRPS,
	}, a.metrics, log)
	if a.rdb != nil && cfg.SearchCacheTTL > 0 {
		serp.WithCache(search.NewRedisCache(a.rdb, cfg.SearchCacheTTL, log))
	}

	a.gen, err = llm.New(llm.Options{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey(),
		Model:    cfg.LLMModel(),
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.orch = pipeline.NewOrchestrator(pipeline.Deps{
		Searcher:          serp,
		SearchConcurrency: cfg.SearchConcurrency,
		TargetYear:        cfg.TargetYear,
		Structurer:        structurer.New(a.gen, cfg.MinYear, a.metrics, log),
		Writer:            pipeline.NewWriter(a.opps, a.metrics, log),
		Sweeper:           pipeline.NewSweeper(a.opps, cfg.RetentionWindow, a.metrics, log),
		Runs:              a.runs,
		Events:            events.NewPublisher(a.rdb),
		Metrics:           a.metrics,
		Log:               log,
	})
	return a, nil
}

// Close releases connections and flushes the logger.
func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.log.Sync()
}
