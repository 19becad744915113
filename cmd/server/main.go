package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/f9-energy/market-engine/internal/config"
	"github.com/f9-energy/market-engine/internal/handler"
	"github.com/f9-energy/market-engine/internal/market"
	"github.com/f9-energy/market-engine/internal/market/providers"
	"github.com/f9-energy/market-engine/internal/middleware"
	"github.com/f9-energy/market-engine/internal/pricing"
	"github.com/f9-energy/market-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional reading archive
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database connected and migrated")
	} else {
		logger.Warn("DATABASE_URL not set, reading archive disabled")
	}

	// Reading cache: Redis if reachable, in-process otherwise
	var cache market.Cache
	var redisCache *market.RedisCache
	if cfg.RedisURL != "" {
		var err error
		redisCache, err = market.NewRedisCache(cfg.RedisURL, cfg.RedisPassword, logger)
		if err != nil {
			logger.Warn("redis unreachable, using in-memory cache", "error", err)
		}
	}
	if redisCache != nil {
		defer redisCache.Close()
		cache = redisCache
		logger.Info("redis connected for reading cache")
	} else {
		cache = market.NewMemoryCache()
	}

	// Data aggregator with the four provider adapters
	agg := market.NewAggregator(cache, logger, cfg.StrictMode)
	agg.Register(providers.NewKepco(cfg.KepcoAPIKey))
	agg.Register(providers.NewTesla(cfg.TeslaAccessToken))
	agg.Register(providers.NewExchange(cfg.ExchangeAPIKey))
	agg.Register(providers.NewChain(cfg.ChainRPCAPIKey, providers.ChainContracts{
		Treasury:  cfg.TreasuryAddress,
		Vault:     cfg.VaultContract,
		Staking:   cfg.StakingContract,
		Liquidity: cfg.LiquidityContract,
	}))
	if db != nil {
		agg.SetArchiver(db)
		go pruneLoop(ctx, db, logger)
	}
	if cfg.StrictMode {
		logger.Info("strict mode enabled, fallback readings will be zeroed")
	}

	// Energy source registry and pricing engine
	registry := pricing.DefaultRegistry()
	if cfg.SourcesFile != "" {
		var err error
		registry, err = pricing.LoadRegistry(cfg.SourcesFile)
		if err != nil {
			logger.Error("failed to load sources file", "path", cfg.SourcesFile, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded energy sources", "path", cfg.SourcesFile, "count", len(registry.List()))
	}
	calc := pricing.NewCalculator(pricing.DefaultNoise())
	engine := pricing.NewEngine(registry, calc, agg)
	forecaster := pricing.NewForecaster(agg)

	var quoteArchive handler.QuoteArchiver
	if db != nil {
		quoteArchive = db
	}

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", readyz(db, redisCache))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", handler.Status(agg))
		r.Get("/price", handler.Price(registry, calc))
		r.Get("/carbon", handler.Carbon(registry))
		r.Post("/swap/quote", handler.SwapQuote(engine, quoteArchive, logger))
		r.Post("/swap/execute", handler.SwapExecute(engine))
		r.Get("/forecast", handler.Forecast(forecaster))
		r.Get("/empire-stats", handler.EmpireStats(forecaster))
		r.Get("/sources", handler.Sources(registry))
		r.Get("/history", handler.History(db))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "strict_mode", cfg.StrictMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

const (
	readingRetention = 30 * 24 * time.Hour
	pruneInterval    = 6 * time.Hour
)

// pruneLoop trims the reading archive to the retention window so the table
// does not grow without bound between deploys.
func pruneLoop(ctx context.Context, db *store.Store, logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PruneReadings(ctx, readingRetention)
			if err != nil {
				logger.Warn("prune readings failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned archived readings", "rows", n)
			}
		}
	}
}

// readyz wires only the dependencies that were actually configured.
func readyz(db *store.Store, rc *market.RedisCache) http.HandlerFunc {
	deps := make([]handler.Pinger, 0, 2)
	if db != nil {
		deps = append(deps, db)
	}
	if rc != nil {
		deps = append(deps, rc)
	}
	return handler.Ready(deps...)
}
