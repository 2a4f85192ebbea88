// Package main is the entry point for the catalog operator CLI.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"storefront/internal/adapters/storage"
	"storefront/internal/adapters/storage/kv"
	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/application/shelf"
	"storefront/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the flags shared by every subcommand.
type cli struct {
	configPath string
	getenv     func(string) string
}

// newRootCmd builds the command tree. getenv is usually os.Getenv.
func newRootCmd(getenv func(string) string) *cobra.Command {
	c := &cli{getenv: getenv}
	root := &cobra.Command{
		Use:   "catalog",
		Short: "catalog - storefront operator tools",
		Long: `catalog manages the storefront's product catalog and inspects visitor shelves.

It reads the same configuration as the server (--config, STOREFRONT_CONFIG and
STOREFRONT_* variables), so it opens the same database and shelf storage.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("catalog version {{.Version}}\n")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")

	root.AddCommand(c.newImportCmd(), c.newSeedCmd(), c.newShelfCmd())
	return root
}

func (c *cli) config() (config.Config, error) {
	cfg, err := config.Load(c.configPath, c.getenv)
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	return cfg, nil
}

// openDB opens and migrates the configured database.
func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func (c *cli) openProducts() (productStore.Store, func() error, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return productStore.NewSQLiteStore(db), db.Close, nil
}

// openShelfStorage opens the shelf backend the server writes to. Changes made
// through a file backend reach running servers through their watcher.
func (c *cli) openShelfStorage() (kv.Store, func() error, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	if cfg.StorageDisabled {
		return nil, nil, errors.New("shelf storage is disabled in this configuration")
	}
	switch cfg.StorageBackend {
	case config.BackendFile:
		fs, err := kv.NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() error { return nil }, nil
	case config.BackendMemory:
		return nil, nil, errors.New("memory shelf storage lives inside the server process")
	default:
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewSQLiteStore(db), db.Close, nil
	}
}

// shelvesOver builds a registry directly over store for one-shot commands.
func shelvesOver(store kv.Store) *shelf.Shelves {
	return shelf.NewShelves(shelf.NewKeyValue(store, shelf.NopRecorder{}, nil), shelf.NewNotifier(nil), shelf.DefaultOptions())
}
