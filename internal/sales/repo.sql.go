package sales

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
)

// PostgresRepository implements Repository backed by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, branch_id, customer_id, number, total, status, created_by, created_at
		FROM sales
		WHERE ($1::bigint IS NULL OR branch_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, filter.BranchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.BranchID, &s.CustomerID, &s.Number, &s.Total, &s.Status, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, sale Sale) (*Sale, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sales (branch_id, customer_id, number, total, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, 'POSTED', $5, NOW())
		RETURNING id, status, created_at`,
		sale.BranchID, sale.CustomerID, sale.Number, sale.Total, sale.CreatedBy,
	).Scan(&sale.ID, &sale.Status, &sale.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListReturns(ctx context.Context, filter ListFilter) ([]Return, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_id, branch_id, total, reason, created_by, created_at
		FROM sale_returns
		WHERE ($1::bigint IS NULL OR branch_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, filter.BranchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []Return
	for rows.Next() {
		var ret Return
		if err := rows.Scan(&ret.ID, &ret.SaleID, &ret.BranchID, &ret.Total, &ret.Reason, &ret.CreatedBy, &ret.CreatedAt); err != nil {
			return nil, err
		}
		returns = append(returns, ret)
	}
	return returns, rows.Err()
}
