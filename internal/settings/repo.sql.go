package settings

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

// PostgresRepository implements Repository against scope_settings.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetFlags returns every stored flag for the scope. A scope with no rows
// yields an empty map, which the evaluator reads as all-flags-false.
func (r *PostgresRepository) GetFlags(ctx context.Context, kind authz.ScopeKind, scopeID int64) (map[authz.Flag]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, enabled FROM scope_settings WHERE scope_kind = $1 AND scope_id = $2`, string(kind), scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make(map[authz.Flag]bool)
	for rows.Next() {
		var name string
		var enabled bool
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, err
		}
		flags[authz.Flag(name)] = enabled
	}
	return flags, rows.Err()
}

// SetFlag upserts one flag for the scope.
func (r *PostgresRepository) SetFlag(ctx context.Context, kind authz.ScopeKind, scopeID int64, name authz.Flag, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scope_settings (scope_kind, scope_id, name, enabled, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (scope_kind, scope_id, name)
		DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()`,
		string(kind), scopeID, string(name), enabled)
	return err
}
