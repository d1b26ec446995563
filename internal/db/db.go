// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and ingestion
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Batches
		"batch_by_id": `SELECT id, domain, source_file, year, status, total_rows,
			processed_rows, started_at, completed_at, error
			FROM ingestion_batches WHERE id = $1`,
		"batch_completed_exists": `SELECT 1 FROM ingestion_batches
			WHERE domain = $1 AND year = $2 AND status = 'completed' LIMIT 1`,
		"batches_for_year": `SELECT id, domain, source_file, year, status, total_rows,
			processed_rows, started_at, completed_at, error
			FROM ingestion_batches WHERE year = $1 ORDER BY started_at DESC`,

		// Staging
		"staging_unprocessed_page": `SELECT row_num, data FROM staging_rows
			WHERE batch_id = $1 AND NOT processed
			ORDER BY row_num LIMIT $2`,
		"staging_unprocessed_count": `SELECT count(*) FROM staging_rows
			WHERE batch_id = $1 AND NOT processed`,

		// Rulesets
		"ruleset_by_id": "SELECT id, name, doc FROM rulesets WHERE id = $1",
		"ruleset_list":  "SELECT id, name FROM rulesets ORDER BY name",

		// Reporting
		"game_by_id": `SELECT id, date, game_number, site, home_team, away_team,
			game_type, has_box, has_pbp FROM games WHERE id = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
