package postgres

import (
	"context"
	"fmt"

	"gudang/pkg/logger"
)

// Quantities are stored as BIGINT scaled by 10^4, matching types.Quantity.
const schema = `
CREATE TABLE IF NOT EXISTS items (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	unit          TEXT NOT NULL,
	quantity      BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	min_stock     BIGINT NOT NULL DEFAULT 0,
	rack_location TEXT NOT NULL DEFAULT '',
	expiry_date   DATE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (name, unit)
);

-- Every line of one submitted transaction shares trx_code, so the column
-- carries no UNIQUE constraint; cross-submission uniqueness is enforced by
-- the code generator against the existing log.
CREATE TABLE IF NOT EXISTS movements (
	id          UUID PRIMARY KEY,
	trx_type    TEXT NOT NULL CHECK (trx_type IN ('in', 'out')),
	item_id     UUID NOT NULL,
	name        TEXT NOT NULL,
	quantity    BIGINT NOT NULL CHECK (quantity > 0),
	unit        TEXT NOT NULL,
	requester   TEXT NOT NULL DEFAULT '',
	supplier    TEXT NOT NULL DEFAULT '',
	note        TEXT NOT NULL DEFAULT '',
	expiry_date DATE,
	trx_code    TEXT NOT NULL,
	bundle_code TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_trx_code ON movements (trx_code);
CREATE INDEX IF NOT EXISTS idx_movements_created_at ON movements (created_at);
CREATE INDEX IF NOT EXISTS idx_movements_bundle_code ON movements (bundle_code);
CREATE INDEX IF NOT EXISTS idx_movements_trx_type ON movements (trx_type);

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('admin', 'staff')),
	created_at    TIMESTAMPTZ NOT NULL
);
`

// InitSchema creates all tables and indexes if they do not exist.
func InitSchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	logger.Info(ctx, "database schema initialized")
	return nil
}

// ResetStore truncates the item store and the movement log. User accounts
// survive a reset. Both tables are cleared in one transaction.
func ResetStore(ctx context.Context, txm *TxManager) error {
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := txm.GetQuerier(ctx)
		if _, err := querier.Exec(ctx, "TRUNCATE TABLE movements"); err != nil {
			return fmt.Errorf("truncate movements: %w", err)
		}
		if _, err := querier.Exec(ctx, "TRUNCATE TABLE items"); err != nil {
			return fmt.Errorf("truncate items: %w", err)
		}
		logger.Warn(ctx, "store reset: all items and movements removed")
		return nil
	})
}
