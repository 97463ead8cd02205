package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/thejasondev/groundops/internal/config"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/logging"
	"github.com/thejasondev/groundops/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Groundops starting up",
		"environment", cfg.AppEnv,
		"storage_driver", cfg.StorageDriver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	kv := openStorage(cfg)
	defer kv.Close()

	upSince := time.Now()
	router, deps := routes.RegisterRoutes(cfg, kv, upSince)
	deps.Store.Load(context.Background())

	// Metrics endpoint lives outside the Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.ServerPort, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")

		// Flush any pending draft save so operator input is not lost.
		if active := deps.Store.ActiveID(); active != "" {
			deps.Drafts.Flush(context.Background(), active)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Fatal("Server exited with error", "error", err.Error())
	}
	logging.Info("Server stopped")
}

// openStorage builds the configured KV backend. A backend that cannot be
// opened degrades to in-memory operation rather than refusing to start: the
// dashboard must stay usable even when durable storage is down.
func openStorage(cfg *config.Config) db.KVStore {
	var (
		kv  db.KVStore
		err error
	)

	switch cfg.StorageDriver {
	case "sqlite":
		kv, err = db.InitSQLiteORM(cfg.SQLitePath)
	case "postgres":
		kv, err = db.InitPostgresORM(cfg.PostgresDSN())
	case "postgres-sqlx":
		kv, err = db.InitPostgres(cfg.PostgresDSN())
	case "redis":
		kv = db.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		kv = db.NewMemoryKV()
	default:
		logging.Warn("Unknown storage driver, using in-memory storage", "driver", cfg.StorageDriver)
		kv = db.NewMemoryKV()
	}

	if err != nil {
		logging.Error("Failed to open storage, continuing in memory", "driver", cfg.StorageDriver, "error", err.Error())
		kv = db.NewMemoryKV()
	}

	logging.Info("Storage ready", "driver", cfg.StorageDriver)
	return kv
}
