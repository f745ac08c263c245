package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// NewDBConnection opens a pgx pool of at most maxConns connections. Idle
// connections are kept at half of that so the scheduler and the SSE streams
// do not reconnect on every request.
func NewDBConnection(connString string, maxConns int) (*sql.DB, error) {
	if maxConns <= 0 {
		maxConns = 10
	}

	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(max(1, maxConns/2))
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// SchemaVersion reads the golang-migrate bookkeeping table. A database that
// was never migrated reports version 0.
func SchemaVersion(ctx context.Context, db *sql.DB) (version int64, dirty bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	return version, dirty, err
}
