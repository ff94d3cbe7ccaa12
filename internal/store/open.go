package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Open opens the relational store. Supported drivers: "sqlite" (the
// reference Northwind deployment is a SQLite file), "duckdb" and
// "postgres".
func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	driver, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" && driver != "duckdb" {
		return nil, fmt.Errorf("store dsn is required")
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store db: %w", err)
	}

	return db, nil
}

func driverName(driver string) (string, error) {
	switch driver {
	case "", "sqlite":
		return "sqlite", nil
	case "duckdb":
		return "duckdb", nil
	case "postgres", "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported store driver: %q", driver)
	}
}
