// Package journal persists placed orders and realized fills to Postgres so
// profit can be audited across restarts. The journal is optional; a nil
// *Journal is a no-op.
package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rickgao/bpx-grid/internal/config"
	"github.com/rickgao/bpx-grid/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS grid_orders (
	id         UUID PRIMARY KEY,
	instance   TEXT NOT NULL,
	order_id   TEXT NOT NULL,
	client_id  BIGINT,
	symbol     TEXT NOT NULL,
	side       TEXT NOT NULL,
	price      NUMERIC NOT NULL,
	quantity   NUMERIC NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS grid_fills (
	id          UUID PRIMARY KEY,
	instance    TEXT NOT NULL,
	order_id    TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	side        TEXT NOT NULL,
	order_price NUMERIC NOT NULL,
	fill_price  NUMERIC NOT NULL,
	quantity    NUMERIC NOT NULL,
	profit      NUMERIC NOT NULL,
	filled_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Journal writes order and fill records to Postgres.
type Journal struct {
	pool     *pgxpool.Pool
	instance string
	logger   *slog.Logger
}

// Connect opens a connection pool, verifies it, and creates the journal
// tables if they do not exist.
func Connect(ctx context.Context, cfg config.JournalConfig, instanceID string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create journal tables: %w", err)
	}

	logger.Info("journal connected", "host", cfg.Host, "database", cfg.Name)

	return &Journal{
		pool:     pool,
		instance: instanceID,
		logger:   logger,
	}, nil
}

// RecordOrder journals a newly placed order.
func (j *Journal) RecordOrder(ctx context.Context, order *model.Order) error {
	if j == nil {
		return nil
	}

	_, err := j.pool.Exec(ctx,
		`INSERT INTO grid_orders (id, instance, order_id, client_id, symbol, side, price, quantity, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(),
		j.instance,
		order.ID,
		order.ClientID,
		order.Symbol,
		string(order.Side),
		order.Price.String(),
		order.Quantity.String(),
		string(order.Status),
	)
	if err != nil {
		return fmt.Errorf("journal order %s: %w", order.ID, err)
	}
	return nil
}

// RecordFill journals a fill observed for a tracked order, together with
// the fill-price approximation and the realized profit attributed to it.
func (j *Journal) RecordFill(ctx context.Context, order *model.Order, fillPrice, profit decimal.Decimal) error {
	if j == nil {
		return nil
	}

	_, err := j.pool.Exec(ctx,
		`INSERT INTO grid_fills (id, instance, order_id, symbol, side, order_price, fill_price, quantity, profit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(),
		j.instance,
		order.ID,
		order.Symbol,
		string(order.Side),
		order.Price.String(),
		fillPrice.String(),
		order.Quantity.String(),
		profit.String(),
	)
	if err != nil {
		return fmt.Errorf("journal fill %s: %w", order.ID, err)
	}
	return nil
}

// Close releases the connection pool.
func (j *Journal) Close() {
	if j != nil && j.pool != nil {
		j.pool.Close()
	}
}
