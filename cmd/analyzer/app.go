package main

import (
	"fmt"
	"log"

	"NepseAnalyzer/internal/analysis"
	"NepseAnalyzer/internal/api"
	"NepseAnalyzer/internal/cache"
	"NepseAnalyzer/internal/collector"
	"NepseAnalyzer/internal/config"
	"NepseAnalyzer/internal/metrics"
	"NepseAnalyzer/internal/recorder"
	"NepseAnalyzer/internal/store"
)

// app bundles the wired dependencies shared by every command.
type app struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	cache   cache.Cache
	redis   *cache.RedisCache
	rec     recorder.Recorder
	metrics *metrics.Metrics
	svc     *analysis.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	fetcher, err := collector.NewFetcher(cfg.DataSource.Source, collector.Options{
		NepseURL:     cfg.DataSource.BaseURL,
		FallbackURL:  cfg.DataSource.FallbackURL,
		AlpacaKey:    cfg.Alpaca.APIKey,
		AlpacaSecret: cfg.Alpaca.APISecret,
		ProxyURL:     cfg.Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	a := &app{cfg: cfg, store: st, metrics: metrics.NewMetrics()}

	// Init recorder
	if cfg.Database.RecorderPath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.RecorderPath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			a.rec = recorder.NewNoopRecorder()
		} else {
			a.rec = sr
		}
	} else {
		a.rec = recorder.NewNoopRecorder()
	}

	// Init cache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("[WARN] init redis cache failed, using memory: %v", err)
			a.cache = cache.NewMemoryCache()
		} else {
			a.cache = rc
			a.redis = rc
		}
	} else {
		a.cache = cache.NewMemoryCache()
	}

	col := collector.NewCollector(fetcher, st)
	col.HistoryDays = cfg.DataSource.HistoryDays

	svc := analysis.NewService(st, col)
	svc.Cache = a.cache
	svc.Recorder = a.rec
	svc.Metrics = a.metrics
	svc.CacheTTL = cfg.Cache.TTL
	a.svc = svc
	return a, nil
}

// apiServer builds the HTTP server with health checks for each backend.
func (a *app) apiServer() *api.Server {
	srv := api.NewServer(a.svc, a.metrics)
	srv.Checks["sqlite"] = a.store
	if a.redis != nil {
		srv.Checks["redis"] = a.redis
	}
	return srv
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		log.Printf("[WARN] close cache: %v", err)
	}
	if err := a.rec.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	if err := a.store.Close(); err != nil {
		log.Printf("[WARN] close store: %v", err)
	}
}
