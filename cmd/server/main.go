// Package main runs the dashboard service: the HTTP API, the websocket event
// hub and, in continuous mode, the trend ingestion loop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/api"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/config"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/events"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/fxrate"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/imageedit"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/ingestion"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
	chstore "github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/clickhouse"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/memory"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/migrations"
	pgstore "github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/postgres"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/triage"
)

// allStores holds all storage implementations.
type allStores struct {
	trendStore      storage.TrendStore
	repositoryStore storage.RepositoryStore
	shortStore      storage.ShortStore
	snapshotStore   storage.TrendSnapshotStore // nil when history is off
}

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if err := config.LoadEnvFile(); err != nil {
		logger.Fatalf("Failed to load .env: %v", err)
	}
	cfg := config.FromEnv()

	// Flags override the environment
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&cfg.ClickHouseDSN, "clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string (enables trend history)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the exchange-rate cache")
	flag.BoolVar(&cfg.UseMemory, "use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL")
	flag.BoolVar(&cfg.ContinuousMode, "continuous", cfg.ContinuousMode, "Run trend ingestion in the background")
	flag.DurationVar(&cfg.IngestInterval, "ingest-interval", cfg.IngestInterval, "Ingestion interval in continuous mode")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	hub := events.NewHub(nil, log.New(os.Stdout, "[events] ", log.LstdFlags|log.Lshortfile))
	defer hub.Close()

	svc := triage.NewService(triage.Options{
		TrendStore:      stores.trendStore,
		RepositoryStore: stores.repositoryStore,
		ShortStore:      stores.shortStore,
		Publisher:       hub,
		Logger:          log.New(os.Stdout, "[triage] ", log.LstdFlags|log.Lshortfile),
	})

	client := httpx.NewClient()
	rates, closeRates := createRateProvider(ctx, cfg, client, logger)
	defer closeRates()

	images, err := createImageService(ctx, cfg, client)
	if err != nil {
		logger.Fatalf("Failed to configure thumbnail storage: %v", err)
	}
	if !images.Enabled() {
		logger.Println("GEMINI_API_KEY not set, thumbnail editing disabled")
	}

	var runner *ingestion.Runner
	if cfg.ContinuousMode {
		runner = newRunner(cfg, client, stores)
	}

	opts := api.Options{
		Triage:    svc,
		Trends:    stores.trendStore,
		Snapshots: stores.snapshotStore,
		Rates:     rates,
		Images:    images,
		Hub:       hub,
		JWTSecret: cfg.AuthJWTSecret,
		Logger:    log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile),
	}
	if runner != nil {
		opts.Ingestion = runner
	}
	if cfg.AuthJWTSecret == "" {
		logger.Println("AUTH_JWT_SECRET not set, all requests share the local session")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(opts).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	if runner != nil {
		go func() {
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("Ingestion stopped: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown: %v", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", cfg.HTTPAddr)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	done <- err
	cancel()

	if err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores creates all required stores. Postgres holds the trend cache
// and the repository; ClickHouse, when configured, holds score history.
func createStores(ctx context.Context, cfg config.Config, logger *log.Logger) (*allStores, func(), error) {
	if cfg.UseMemory {
		stores := &allStores{
			trendStore:      memory.NewTrendStore(),
			repositoryStore: memory.NewRepositoryStore(),
			shortStore:      memory.NewShortStore(),
			snapshotStore:   memory.NewTrendSnapshotStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool.Pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	stores := &allStores{
		trendStore:      pgstore.NewTrendStore(pool),
		repositoryStore: pgstore.NewRepositoryStore(pool),
		shortStore:      pgstore.NewShortStore(pool),
	}

	if cfg.ClickHouseDSN == "" {
		logger.Println("CLICKHOUSE_DSN not set, trend history disabled")
		return stores, pool.Close, nil
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	stores.snapshotStore = chstore.NewTrendSnapshotStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// createRateProvider caches quotes in Redis when configured, in memory
// otherwise. An unreachable Redis falls back to memory.
func createRateProvider(ctx context.Context, cfg config.Config, client *httpx.Client, logger *log.Logger) (*fxrate.Provider, func()) {
	var cache fxrate.Cache = fxrate.NewMemoryCache()
	closeFn := func() {}

	if cfg.RedisAddr != "" {
		rc := fxrate.NewRedisCache(cfg.RedisAddr)
		if err := rc.Ping(ctx); err != nil {
			logger.Printf("Redis at %s unavailable, using in-memory rate cache: %v", cfg.RedisAddr, err)
			rc.Close()
		} else {
			cache = rc
			closeFn = func() { rc.Close() }
		}
	}

	return fxrate.NewProvider(fxrate.Options{
		Client:   client,
		QuoteURL: cfg.FXQuoteURL,
		Cache:    cache,
		TTL:      cfg.FXCacheTTL,
		Logger:   log.New(os.Stdout, "[fxrate] ", log.LstdFlags|log.Lshortfile),
	}), closeFn
}

func createImageService(ctx context.Context, cfg config.Config, client *httpx.Client) (*imageedit.Service, error) {
	logger := log.New(os.Stdout, "[imageedit] ", log.LstdFlags|log.Lshortfile)
	editor := imageedit.NewEditor(imageedit.EditorOptions{
		Client: client,
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		Logger: logger,
	})

	var store imageedit.Store
	if cfg.ThumbnailStorageEnabled() {
		s3, err := imageedit.NewS3Store(ctx, imageedit.S3Config{
			Endpoint:      cfg.ThumbnailEndpoint,
			Region:        cfg.ThumbnailRegion,
			Bucket:        cfg.ThumbnailBucket,
			AccessKey:     cfg.ThumbnailAccessKey,
			SecretKey:     cfg.ThumbnailSecretKey,
			PublicBaseURL: cfg.ThumbnailPublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		store = s3
	}

	return imageedit.NewService(editor, store, logger), nil
}

func newRunner(cfg config.Config, client *httpx.Client, stores *allStores) *ingestion.Runner {
	return ingestion.NewRunner(ingestion.RunnerOptions{
		Sources: []ingestion.TrendSource{
			ingestion.NewYouTubeSource(ingestion.YouTubeOptions{
				Client: client,
				APIKey: cfg.YouTubeAPIKey,
				Region: cfg.YouTubeRegion,
			}),
			ingestion.NewTwitchSource(ingestion.TwitchOptions{
				Client:       client,
				ClientID:     cfg.TwitchClientID,
				ClientSecret: cfg.TwitchClientSecret,
			}),
		},
		TrendStore:    stores.trendStore,
		SnapshotStore: stores.snapshotStore,
		Interval:      cfg.IngestInterval,
		Limit:         cfg.IngestLimit,
		Logger:        log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile),
	})
}
