// Package postgres persists normalized transaction records.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caaosorio/expenses/pkg/api"
)

//go:embed schema.sql
var schemaSQL string

// Config holds the store connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of pooled connections.
	MaxPoolSize int
}

// Store reads and writes transaction records in PostgreSQL. It satisfies
// api.Store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// MerchantTotal is a per-merchant purchase aggregate.
type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// New connects, verifies the connection and applies the schema.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 5
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Database)
	return &Store{pool: pool, logger: logger}, nil
}

// UpsertRecords writes records in one batch. The unique constraint on the
// non-audit fields makes re-ingestion of a period idempotent.
func (s *Store) UpsertRecords(ctx context.Context, records []api.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO transactions (kind, amount, counterparty, occurred_at, instrument, raw_text)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			ON CONFLICT ON CONSTRAINT transactions_identity DO NOTHING
		`, r.Kind.String(), r.Amount, r.Counterparty, r.OccurredAt, r.Instrument, r.RawText)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("inserting record: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	s.logger.Info("persisted records", "count", len(records))
	return nil
}

// RecordsSince returns the records that occurred at or after the given
// instant, most recent first.
func (s *Store) RecordsSince(ctx context.Context, since time.Time) ([]api.TransactionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT kind, amount, counterparty, occurred_at, instrument, COALESCE(raw_text, '')
		FROM transactions
		WHERE occurred_at >= $1
		ORDER BY occurred_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []api.TransactionRecord
	for rows.Next() {
		var (
			r    api.TransactionRecord
			kind string
		)
		if err := rows.Scan(&kind, &r.Amount, &r.Counterparty, &r.OccurredAt, &r.Instrument, &r.RawText); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Kind = kindFromName(kind)
		records = append(records, r)
	}

	return records, rows.Err()
}

// MerchantTotalsSince aggregates purchase records per merchant, largest
// outflow first.
func (s *Store) MerchantTotalsSince(ctx context.Context, since time.Time) ([]MerchantTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT counterparty, SUM(amount) AS amount, COUNT(*) AS count
		FROM transactions
		WHERE occurred_at >= $1 AND kind = $2 AND counterparty <> $3
		GROUP BY counterparty
		ORDER BY amount ASC
	`, since, api.KindPurchase.String(), api.UnknownField)
	if err != nil {
		return nil, fmt.Errorf("querying merchant totals: %w", err)
	}
	defer rows.Close()

	var totals []MerchantTotal
	for rows.Next() {
		var t MerchantTotal
		if err := rows.Scan(&t.Merchant, &t.Amount, &t.Count); err != nil {
			return nil, fmt.Errorf("scanning merchant total: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func kindFromName(name string) api.Kind {
	for _, k := range api.Kinds {
		if k.String() == name {
			return k
		}
	}
	return api.KindUnknown
}
