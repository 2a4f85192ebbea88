package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	emailPkg "storefront/internal/adapters/email"
	web "storefront/internal/adapters/http"
	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/metrics"
	"storefront/internal/adapters/storage"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	"storefront/internal/adapters/storage/kv"
	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/application/orchestrators"
	"storefront/internal/application/shelf"
	"storefront/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sweepInterval is how often idle visitor shelves are dropped from memory.
const sweepInterval = time.Minute

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	collector := perf.NewCollector(2000)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	products := productStore.NewSQLiteStore(timedDB)
	inquiries := inquiryStore.NewSQLiteStore(timedDB)

	if cfg.CatalogSeed != "" {
		if err := seedCatalog(ctx, cfg.CatalogSeed, products); err != nil {
			return err
		}
	}

	shelfStore, err := openShelfStore(cfg, timedDB)
	if err != nil {
		return err
	}

	m := metrics.New()
	opts := shelf.DefaultOptions()
	opts.Recorder = m
	shelves := shelf.NewShelves(
		shelf.NewKeyValue(shelfStore, m, collector),
		shelf.NewNotifier(m),
		opts,
	)

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender", "type", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		slog.Info("email_sender", "type", "noop")
	}

	handler, err := web.NewMux(web.Deps{
		Products:  products,
		Inquiries: inquiries,
		Shelves:   shelves,
		Sender:    sender,
		Metrics:   m,
		Collector: collector,
		Config:    cfg,
		Done:      ctx.Done(),
		Now:       time.Now,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server_started",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"storage", cfg.StorageBackend,
			"storage_disabled", cfg.StorageDisabled,
			"schema", storage.LatestSchemaVersion(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("server_stopping")
		return srv.Shutdown(shutdownCtx)
	})
	if w, ok := shelfStore.(kv.Watcher); ok {
		g.Go(func() error {
			slog.Info("shelf_watch_started", "storage", cfg.StorageBackend)
			if err := shelves.Watch(gctx, w); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("watch shelf storage: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := shelves.Sweep(cfg.ShelfIdleTTL); n > 0 {
					slog.Debug("shelves_swept", "evicted", n)
				}
				m.SetShelvesCached(shelves.Cached())
			}
		}
	})
	return g.Wait()
}

// openShelfStore picks the key-value backend for visitor shelves.
func openShelfStore(cfg config.Config, db storage.SQLDB) (kv.Store, error) {
	if cfg.StorageDisabled {
		slog.Warn("shelf_storage_disabled")
		return kv.Unavailable{}, nil
	}
	switch cfg.StorageBackend {
	case config.BackendFile:
		fs, err := kv.NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("open shelf dir: %w", err)
		}
		return fs, nil
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil
	default:
		return kv.NewSQLiteStore(db), nil
	}
}

func seedCatalog(ctx context.Context, path string, products productStore.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()
	res, err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogInput{
		Reader:      f,
		OnlyIfEmpty: true,
	}, orchestrators.SeedCatalogDeps{ProductStore: products})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	slog.Info("catalog_seed", "path", path, "seeded", res.Seeded, "skipped", res.Skipped)
	return nil
}
