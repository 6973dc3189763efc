package storage

import (
	"context"
	"database/sql"
	"errors"
)

const mysqlSchema = `CREATE TABLE IF NOT EXISTS kv_store (
  k          VARCHAR(191) NOT NULL PRIMARY KEY,
  v          LONGBLOB     NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQL stores blobs in a single kv_store table.  It is meant for
// deployments that already run the MySQL instance the server uses.
type MySQL struct {
	db *sql.DB
}

// NewMySQL wraps db.  Call EnsureSchema once before use.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

// EnsureSchema creates kv_store if it does not exist.
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, mysqlSchema)
	return ioErr("schema", "", err)
}

func (m *MySQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := m.db.QueryRowContext(ctx, "SELECT v FROM kv_store WHERE k = ? LIMIT 1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioErr("get", key, err)
	}
	return v, true, nil
}

func (m *MySQL) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)",
		key, value)
	return ioErr("set", key, err)
}

func (m *MySQL) Remove(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM kv_store WHERE k = ?", key)
	return ioErr("remove", key, err)
}

// Clear deletes keys inside a transaction so a partial clear never sticks.
func (m *MySQL) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return ioErr("clear", "", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM kv_store WHERE k = ?", k); err != nil {
			return ioErr("clear", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return ioErr("clear", "", err)
	}
	committed = true
	return nil
}

func (m *MySQL) Close() error { return m.db.Close() }
