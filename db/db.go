package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// PoolConfig sizes the connection pool. Zero fields fall back to the defaults.
type PoolConfig struct {
	MaxConns        int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

const (
	defaultMaxConns        = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 5 * time.Second
)

func (p PoolConfig) withDefaults() PoolConfig {
	if p.MaxConns <= 0 {
		p.MaxConns = defaultMaxConns
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if p.PingTimeout <= 0 {
		p.PingTimeout = defaultPingTimeout
	}
	return p
}

// Connect opens a pooled Postgres handle and pings it before handing it out.
func Connect(dsn string, pool PoolConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}
	return setup(db, pool, logger)
}

// setup applies the pool limits and closes db again when the ping fails.
func setup(db *sql.DB, pool PoolConfig, logger *slog.Logger) (*sql.DB, error) {
	pool = pool.withDefaults()
	db.SetMaxOpenConns(pool.MaxConns)
	db.SetMaxIdleConns(pool.MaxConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pool.PingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", pool.PingTimeout, err)
	}

	logger.Debug("database pool configured",
		slog.Int("max_conns", pool.MaxConns),
		slog.Duration("conn_max_lifetime", pool.ConnMaxLifetime))
	return db, nil
}
