package userinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/user"
)

// PostgresUserRepository implements user.Repository on PostgreSQL.
type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) user.Repository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	var u user.User
	query := `SELECT user_id, email, password_hash, role, created_at, updated_at
	          FROM users WHERE user_id = $1`
	err := r.db.GetContext(ctx, &u, query, id.Int64())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.Int64())
		}
		return nil, errx.Wrap(err, "failed to find user by id", errx.TypeInternal)
	}
	return &u, nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `SELECT user_id, email, password_hash, role, created_at, updated_at
	          FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to find user by email", errx.TypeInternal)
	}
	return &u, nil
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, errx.Wrap(err, "failed to check email existence", errx.TypeInternal)
	}
	return exists, nil
}

// Create inserts the user. The unique index on email is the backstop for the
// registrar's check-then-insert race: a concurrent duplicate surfaces here as
// unique_violation and maps to the same EmailExists error.
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `INSERT INTO users (email, password_hash, role, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING user_id`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		u.Email, u.PasswordHash, u.Role.String(), u.CreatedAt, u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return user.ErrEmailExists().WithDetail("email", u.Email)
		}
		return errx.Wrap(err, "failed to create user", errx.TypeInternal).
			WithDetail("email", u.Email)
	}

	u.ID = kernel.NewUserID(id)
	return nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id kernel.UserID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, id.Int64(), passwordHash)
	if err != nil {
		return errx.Wrap(err, "failed to update password", errx.TypeInternal)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on password update", errx.TypeInternal)
	}
	if affected == 0 {
		return user.ErrUserNotFound().WithDetail("user_id", id.Int64())
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id kernel.UserID) error {
	query := `DELETE FROM users WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, id.Int64())
	if err != nil {
		return errx.Wrap(err, "failed to delete user", errx.TypeInternal)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on delete", errx.TypeInternal)
	}
	if affected == 0 {
		return user.ErrUserNotFound().WithDetail("user_id", id.Int64())
	}
	return nil
}
