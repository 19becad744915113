package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS readings (
    id BIGSERIAL PRIMARY KEY,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    is_live BOOLEAN NOT NULL,
    payload JSONB NOT NULL,
    fetched_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS readings_kind_fetched_at_idx
    ON readings (kind, fetched_at DESC);

CREATE TABLE IF NOT EXISTS swap_quotes (
    id UUID PRIMARY KEY,
    from_source TEXT NOT NULL,
    to_source TEXT NOT NULL,
    from_amount DOUBLE PRECISION NOT NULL,
    to_amount DOUBLE PRECISION NOT NULL,
    exchange_rate DOUBLE PRECISION NOT NULL,
    total_cost DOUBLE PRECISION NOT NULL,
    carbon_delta DOUBLE PRECISION NOT NULL,
    esg_impact TEXT NOT NULL,
    slippage DOUBLE PRECISION NOT NULL,
    quoted_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
