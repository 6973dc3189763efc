package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteConfig holds the parameters for opening a file-backed store.
type SQLiteConfig struct {
	// Path is the database file.  The parent directory must exist; the
	// file is created on first open.
	Path string

	// PoolSize defaults to 4.  SQLite serializes writes regardless.
	PoolSize int

	Logger *slog.Logger
}

// SQLite is the default local persistence backend: one row per key in a
// single WAL-mode database file.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// OpenSQLite opens (or creates) the database at cfg.Path and ensures the
// kv table exists.
func OpenSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: opening %s: %w", cfg.Path, err)
	}
	logger.Info("sqlite store opened", "path", cfg.Path, "pool_size", poolSize)
	return &SQLite{pool: pool, logger: logger, path: cfg.Path}, nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, p, nil); err != nil {
			return fmt.Errorf("sqlite store: %s: %w", p, err)
		}
	}
	return sqlitex.ExecuteScript(conn, sqliteSchema, nil)
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, false, ioErr("get", key, err)
	}
	defer s.pool.Put(conn)

	var (
		value []byte
		found bool
	)
	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, ioErr("get", key, err)
	}
	return value, found, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return ioErr("set", key, err)
	}
	defer s.pool.Put(conn)

	if value == nil {
		value = []byte{}
	}
	err = sqlitex.Execute(conn,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{key, value, time.Now().UTC().UnixMilli()}})
	return ioErr("set", key, err)
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return ioErr("remove", key, err)
	}
	defer s.pool.Put(conn)
	err = sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{Args: []any{key}})
	return ioErr("remove", key, err)
}

// Clear deletes keys in one transaction.
func (s *SQLite) Clear(ctx context.Context, keys ...string) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return ioErr("clear", "", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return ioErr("clear", "", err)
	}
	defer endTransaction(&err)

	for _, k := range keys {
		if err = sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{Args: []any{k}}); err != nil {
			return ioErr("clear", k, err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("sqlite store close error", "path", s.path, "error", err)
		return ioErr("close", "", err)
	}
	s.logger.Info("sqlite store closed", "path", s.path)
	return nil
}
