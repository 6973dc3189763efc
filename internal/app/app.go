// Package app assembles the reservation core: it opens the configured
// store and wires the Identity, Catalog and Ledger services onto it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/iliyamo/trip-seat-reservation/internal/config"
	"github.com/iliyamo/trip-seat-reservation/internal/database"
	"github.com/iliyamo/trip-seat-reservation/internal/repository"
	"github.com/iliyamo/trip-seat-reservation/internal/service"
	"github.com/iliyamo/trip-seat-reservation/internal/storage"
)

// Options configures New.
type Options struct {
	Prefix     string
	BcryptCost int
	MaxSeats   int
	Logger     *slog.Logger
	Publisher  service.EventPublisher
}

// App owns the store and the three services built on it.
type App struct {
	Store    storage.Store
	Identity *service.Identity
	Catalog  *service.Catalog
	Ledger   *service.Ledger

	state  *repository.StateRepo
	logger *slog.Logger
	ready  atomic.Bool
}

// New wires services onto st.  Nothing is loaded until Initialize.
func New(st storage.Store, opts Options) *App {
	if opts.Prefix == "" {
		opts.Prefix = storage.DefaultPrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keys := storage.NewKeys(opts.Prefix)
	catalog := service.NewCatalog(repository.NewTripRepo(st, keys), service.CatalogOptions{
		Logger: logger.With("component", "catalog"),
	})
	return &App{
		Store: st,
		Identity: service.NewIdentity(repository.NewUserRepo(st, keys), service.IdentityOptions{
			BcryptCost: opts.BcryptCost,
			Logger:     logger.With("component", "identity"),
		}),
		Catalog: catalog,
		Ledger: service.NewLedger(repository.NewReservationRepo(st, keys), catalog, service.LedgerOptions{
			MaxSeats:  opts.MaxSeats,
			Logger:    logger.With("component", "ledger"),
			Publisher: opts.Publisher,
		}),
		state:  repository.NewStateRepo(st, keys),
		logger: logger,
	}
}

// Initialize loads (or seeds) every collection, marks the store
// initialized and logs any occupancy drift found on load.
func (a *App) Initialize(ctx context.Context) error {
	if err := a.Identity.Initialize(ctx); err != nil {
		return fmt.Errorf("init identity: %w", err)
	}
	if err := a.Catalog.Initialize(ctx); err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	if err := a.Ledger.Initialize(ctx); err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	if !a.state.IsInitialized(ctx) {
		if err := a.state.MarkInitialized(ctx); err != nil {
			return fmt.Errorf("mark initialized: %w", err)
		}
	}
	for _, d := range a.Ledger.Audit() {
		a.logger.Warn("occupancy drift", "trip_id", d.TripID, "unbacked", d.Unbacked, "unmarked", d.Unmarked)
	}
	a.ready.Store(true)
	return nil
}

// Ready reports whether Initialize has completed.
func (a *App) Ready() bool { return a.ready.Load() }

// Reset wipes every persisted collection and reloads the defaults.
func (a *App) Reset(ctx context.Context) error {
	a.ready.Store(false)
	if err := a.state.ClearAll(ctx); err != nil {
		return err
	}
	a.Identity.Reset()
	a.Catalog.Reset()
	a.Ledger.Reset()
	return a.Initialize(ctx)
}

// Close releases the store.
func (a *App) Close() error { return a.Store.Close() }

// OpenStore opens the backend named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return storage.NewMemory(), nil
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite dir: %w", err)
			}
		}
		st, err := storage.OpenSQLite(storage.SQLiteConfig{Path: cfg.SQLitePath, PoolSize: cfg.SQLitePool, Logger: logger})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreRedis:
		rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return storage.NewRedis(rdb), nil
	case config.StoreMySQL:
		db, err := database.Open(ctx, database.Params{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			return nil, fmt.Errorf("mysql store: %w", err)
		}
		st := storage.NewMySQL(db)
		if err := st.EnsureSchema(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mysql schema: %w", err)
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
