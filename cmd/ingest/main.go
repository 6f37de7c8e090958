// Package main fetches trending videos from every configured platform and
// upserts them into the trends cache, once or on an interval.
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

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/config"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/ingestion"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
	chstore "github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/clickhouse"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/memory"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/migrations"
	pgstore "github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/postgres"
)

func main() {
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if err := config.LoadEnvFile(); err != nil {
		logger.Fatalf("Failed to load .env: %v", err)
	}
	cfg := config.FromEnv()

	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&cfg.ClickHouseDSN, "clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string (enables score history)")
	flag.BoolVar(&cfg.UseMemory, "use-memory", cfg.UseMemory, "Use in-memory storage (dry run)")
	flag.BoolVar(&cfg.ContinuousMode, "continuous", cfg.ContinuousMode, "Keep running and ingest on every interval")
	flag.DurationVar(&cfg.IngestInterval, "interval", cfg.IngestInterval, "Ingestion interval in continuous mode")
	flag.IntVar(&cfg.IngestLimit, "limit", cfg.IngestLimit, "Items fetched per platform")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	if *metricsAddr != "" && cfg.ContinuousMode {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

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

	err := run(ctx, logger, cfg)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Ingestion failed: %v", err)
	}
	logger.Println("Done")
}

func run(ctx context.Context, logger *log.Logger, cfg config.Config) error {
	trends, snapshots, cleanup, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client := httpx.NewClient()
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
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
		TrendStore:    trends,
		SnapshotStore: snapshots,
		Interval:      cfg.IngestInterval,
		Limit:         cfg.IngestLimit,
		Logger:        logger,
	})

	if cfg.ContinuousMode {
		return runner.Run(ctx)
	}

	res, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}
	for p, n := range res.Ingested {
		logger.Printf("%s: %d trends", p, n)
	}
	if res.Status == "skipped" {
		logger.Println("No platform credentials configured; nothing ingested")
	}
	return nil
}

func openStores(ctx context.Context, cfg config.Config) (storage.TrendStore, storage.TrendSnapshotStore, func(), error) {
	if cfg.UseMemory {
		return memory.NewTrendStore(), memory.NewTrendSnapshotStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool.Pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	trends := pgstore.NewTrendStore(pool)

	if cfg.ClickHouseDSN == "" {
		return trends, nil, pool.Close, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return trends, chstore.NewTrendSnapshotStore(conn), cleanup, nil
}
