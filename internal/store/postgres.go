package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/f9-energy/market-engine/internal/market"
	"github.com/f9-energy/market-engine/internal/pricing"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Readings ---

// ArchivedReading is one persisted feed measurement.
type ArchivedReading struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Source    string          `json:"source"`
	IsLive    bool            `json:"is_live"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// SaveReading archives one reading, live or fallback. The payload is the
// reading's kind-specific body; the liveness flag is stored alongside so
// provenance survives persistence.
func (s *Store) SaveReading(ctx context.Context, r *market.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO readings (kind, source, is_live, payload, fetched_at) VALUES ($1, $2, $3, $4, $5)`,
		string(r.Kind), r.Source, r.IsLive, payload, r.FetchedAt)
	return err
}

// RecentReadings returns up to limit readings of one kind, newest first.
func (s *Store) RecentReadings(ctx context.Context, kind string, limit int) ([]ArchivedReading, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, source, is_live, payload, fetched_at
		 FROM readings WHERE kind = $1 ORDER BY fetched_at DESC LIMIT $2`,
		kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchivedReading
	for rows.Next() {
		var r ArchivedReading
		if err := rows.Scan(&r.ID, &r.Kind, &r.Source, &r.IsLive, &r.Payload, &r.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Quotes ---

// SaveQuote records an issued swap quote for audit. Quotes are never read
// back for execution; the audit trail is the only purpose.
func (s *Store) SaveQuote(ctx context.Context, q *pricing.SwapQuote) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO swap_quotes
		   (id, from_source, to_source, from_amount, to_amount, exchange_rate,
		    total_cost, carbon_delta, esg_impact, slippage, quoted_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		q.ID, q.FromSource, q.ToSource, q.FromAmount, q.ToAmount, q.ExchangeRate,
		q.TotalCost, q.CarbonDelta, q.ESGImpact, q.Slippage, q.QuotedAt, q.ExpiresAt)
	return err
}

// PruneReadings deletes archived readings older than the retention window.
func (s *Store) PruneReadings(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM readings WHERE fetched_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
