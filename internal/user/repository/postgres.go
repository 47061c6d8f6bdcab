package repository

import (
	"context"
	"database/sql"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const pgUniqueViolation = "23505"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return user.ErrEmailTaken
		}
		return errors.Wrap(err, "create user")
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `
		SELECT id, name, email, password_hash, role, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `
		SELECT id, name, email, password_hash, role, is_active, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user by email")
	}
	return &u, nil
}

func (r *PGRepository) FindAllActive(ctx context.Context) ([]model.User, error) {
	items := []model.User{}
	err := r.DB.SelectContext(ctx, &items, `
		SELECT id, name, email, password_hash, role, is_active, created_at, updated_at
		FROM users WHERE is_active = TRUE ORDER BY created_at DESC
	`)
	return items, errors.Wrap(err, "list users")
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET name = $1, role = $2, is_active = $3, password_hash = $4, updated_at = NOW()
		WHERE id = $5
	`, u.Name, u.Role, u.IsActive, u.PasswordHash, u.ID)
	return errors.Wrap(err, "update user")
}

func (r *PGRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return false, errors.Wrap(err, "deactivate user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deactivate user rows affected")
	}
	return n > 0, nil
}
