package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-mdsite/internal/identity"
	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config selects the manifest backend. CacheTTL > 0 puts a read-through
// cache in front of per-source lookups.
type Config struct {
	Driver   string
	DSN      string
	CacheTTL time.Duration
	Logger   interfaces.Logger
}

// BunStore keeps the manifest in a SQL database through bun.
type BunStore struct {
	db     *bun.DB
	repo   repository.Repository[*Entry]
	logger interfaces.Logger
	owned  bool
}

var _ Store = (*BunStore)(nil)

// Open returns the store named by cfg.Driver. SQL stores create their table
// on first use.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "sqlite", DriverPostgres, "postgresql":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("manifest: %s driver requires a dsn", driver)
	}

	var db *bun.DB
	if driver == DriverPostgres || driver == "postgresql" {
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("manifest: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	} else {
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("manifest: open sqlite: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
	}

	store, err := NewBunStore(ctx, db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// NewBunStore wraps an existing database. The caller keeps ownership of db.
func NewBunStore(ctx context.Context, db *bun.DB, cfg Config) (*BunStore, error) {
	if _, err := db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("manifest: create table: %w", err)
	}
	if err := addRenderKeyColumn(ctx, db); err != nil {
		return nil, err
	}

	repo := NewEntryRepository(db)
	if cfg.CacheTTL > 0 {
		cacheCfg := repocache.DefaultConfig()
		cacheCfg.TTL = cfg.CacheTTL
		cacheService, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("manifest: cache service: %w", err)
		}
		repo = repositorycache.New(repo, cacheService, repocache.NewDefaultKeySerializer())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &BunStore{db: db, repo: repo, logger: logger}, nil
}

// addRenderKeyColumn upgrades tables created before render keys were
// recorded. Old rows get an empty key and rebuild once.
func addRenderKeyColumn(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewRaw("SELECT render_key FROM ? LIMIT 0", bun.Ident(manifestTable)).Exec(ctx); err == nil {
		return nil
	}
	_, err := db.NewAddColumn().
		Model((*Entry)(nil)).
		ColumnExpr("render_key VARCHAR NOT NULL DEFAULT ''").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("manifest: add render_key column: %w", err)
	}
	return nil
}

func (s *BunStore) Load(ctx context.Context) (map[string]Entry, error) {
	var rows []Entry
	if err := s.db.NewSelect().Model(&rows).OrderExpr("source ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("manifest: load: %w", err)
	}
	out := make(map[string]Entry, len(rows))
	for _, row := range rows {
		out[row.Source] = row
	}
	return out, nil
}

func (s *BunStore) Save(ctx context.Context, entries ...Entry) error {
	for i := range entries {
		entry := entries[i]
		if entry.PageID == uuid.Nil {
			entry.PageID = identity.PageUUID(entry.Source)
		}

		existing, err := s.repo.GetByIdentifier(ctx, entry.Source)
		switch {
		case err == nil:
			entry.PageID = existing.PageID
			if _, err := s.repo.Update(ctx, &entry); err != nil {
				return fmt.Errorf("manifest: update %s: %w", entry.Source, err)
			}
		case goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
			if _, err := s.repo.Create(ctx, &entry); err != nil {
				return fmt.Errorf("manifest: create %s: %w", entry.Source, err)
			}
		default:
			return fmt.Errorf("manifest: lookup %s: %w", entry.Source, err)
		}
	}
	s.logger.Debug("manifest.saved", "entries", len(entries))
	return nil
}

func (s *BunStore) Delete(ctx context.Context, sources ...string) error {
	for _, source := range sources {
		existing, err := s.repo.GetByIdentifier(ctx, source)
		if err != nil {
			if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
				continue
			}
			return fmt.Errorf("manifest: lookup %s: %w", source, err)
		}
		if err := s.repo.Delete(ctx, existing); err != nil {
			return fmt.Errorf("manifest: delete %s: %w", source, err)
		}
	}
	return nil
}

// Reset removes every entry, going through the repository so cached lookups
// are invalidated too.
func (s *BunStore) Reset(ctx context.Context) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}
	sources := make([]string, 0, len(entries))
	for source := range entries {
		sources = append(sources, source)
	}
	if err := s.Delete(ctx, sources...); err != nil {
		return err
	}
	s.logger.Info("manifest.reset", "entries", len(sources))
	return nil
}

// Close releases the database when the store opened it.
func (s *BunStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
