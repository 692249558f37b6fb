package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwaffle/wafflebot/internal/models"
)

// PostgresLedger implements Ledger using PostgreSQL.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a connection pool and verifies connectivity.
func NewPostgresLedger(ctx context.Context, connString string) (*PostgresLedger, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresLedger{pool: pool}, nil
}

// Insert appends all transfers in one transaction.
func (l *PostgresLedger) Insert(ctx context.Context, transfers []models.PointTransfer) error {
	if len(transfers) == 0 {
		return nil
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO waffle_logs (sender, recipient, count, href, given_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, t := range transfers {
		if _, err := tx.Exec(ctx, query, t.From, t.To, t.Count, t.Href, t.Date); err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transfers: %w", err)
	}
	return nil
}

// ListRange returns transfers with given_at in [from, to).
func (l *PostgresLedger) ListRange(ctx context.Context, from, to time.Time) ([]models.PointTransfer, error) {
	query := `
		SELECT sender, recipient, count, href, given_at
		FROM waffle_logs
		WHERE given_at >= $1 AND given_at < $2
		ORDER BY given_at
	`
	rows, err := l.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// ListAll returns the entire ledger in insertion order.
func (l *PostgresLedger) ListAll(ctx context.Context) ([]models.PointTransfer, error) {
	query := `
		SELECT sender, recipient, count, href, given_at
		FROM waffle_logs
		ORDER BY given_at
	`
	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func scanTransfers(rows pgx.Rows) ([]models.PointTransfer, error) {
	var transfers []models.PointTransfer
	for rows.Next() {
		var t models.PointTransfer
		if err := rows.Scan(&t.From, &t.To, &t.Count, &t.Href, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transfers: %w", err)
	}
	return transfers, nil
}

// Close releases the connection pool.
func (l *PostgresLedger) Close() {
	l.pool.Close()
}
