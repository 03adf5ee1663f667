package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
)

// ErrEmailTaken indicates a unique violation on the email column.
var ErrEmailTaken = errors.New("users: email already registered")

const userColumns = `
	u.id, u.email, u.password_hash, u.name, u.role,
	u.branch_id, u.warehouse_id,
	COALESCE(b.name, ''), COALESCE(w.name, ''),
	u.is_active, u.created_at, u.updated_at`

const userJoins = `
	FROM users u
	LEFT JOIN branches b ON b.id = u.branch_id
	LEFT JOIN warehouses w ON w.id = u.warehouse_id`

// PostgresRepository implements Repository backed by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+userJoins+` ORDER BY u.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+userJoins+` WHERE u.id = $1`, id)
	return scanUserPtr(row)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+userJoins+` WHERE u.email = $1`, email)
	return scanUserPtr(row)
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (*User, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, branch_id, warehouse_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id`,
		user.Email, user.PasswordHash, user.Name, string(user.Role), user.BranchID, user.WarehouseID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Update(ctx context.Context, user User) (*User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $2, role = $3, branch_id = $4, warehouse_id = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1`,
		user.ID, user.Name, string(user.Role), user.BranchID, user.WarehouseID, user.IsActive)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var role string
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &role,
		&user.BranchID, &user.WarehouseID,
		&user.BranchName, &user.WarehouseName,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Role = authz.Role(role)
	return user, nil
}

func scanUserPtr(row rowScanner) (*User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
