package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Config carries the connection settings the persistence client reads.
// GetServer returns the DSN for the configured driver.
type Config interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

// OpenPostgres opens a lib/pq connection for the configured DSN and wraps
// it in a persistence client with the postgres dialect.
func OpenPostgres(cfg Config) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: persistence config is required")
	}
	sqlDB, err := sql.Open("postgres", cfg.GetServer())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres connection: %w", err)
	}
	client, err := persistence.New(cfg, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// OpenSQLite opens a go-sqlite3 connection for the configured DSN and wraps
// it in a persistence client with the sqlite dialect. The pool is pinned to
// one connection so shared cache in-memory databases behave.
func OpenSQLite(cfg Config) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: persistence config is required")
	}
	sqlDB, err := sql.Open("sqlite3", cfg.GetServer())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}
