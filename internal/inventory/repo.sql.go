package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository backed by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListStock(ctx context.Context, filter ListFilter) ([]StockLevel, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT sb.warehouse_id, sb.product_id, p.name, sb.qty, sb.updated_at
		FROM stock_balances sb
		JOIN products p ON p.id = sb.product_id
		WHERE ($1::bigint IS NULL OR sb.warehouse_id = $1)
		ORDER BY p.name
		LIMIT $2`, filter.WarehouseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var lvl StockLevel
		if err := rows.Scan(&lvl.WarehouseID, &lvl.ProductID, &lvl.ProductName, &lvl.Qty, &lvl.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}

func (r *PostgresRepository) RecordAdjustment(ctx context.Context, adj Adjustment) (*Adjustment, error) {
	err := r.pool.QueryRow(ctx, `
		WITH upsert AS (
			INSERT INTO stock_balances (warehouse_id, product_id, qty, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (warehouse_id, product_id)
			DO UPDATE SET qty = stock_balances.qty + EXCLUDED.qty, updated_at = NOW()
		)
		INSERT INTO stock_adjustments (warehouse_id, product_id, qty, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`,
		adj.WarehouseID, adj.ProductID, adj.Qty, adj.Note, adj.CreatedBy,
	).Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &adj, nil
}
