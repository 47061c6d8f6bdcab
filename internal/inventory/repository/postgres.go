package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// DecrementStock is the reservation primitive: a single guarded UPDATE whose
// row count tells us whether the guard (active, enough stock) held at write
// time. Concurrent reservations against the same product serialize on the row.
func (r *PGRepository) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND is_active = TRUE AND stock >= $1
	`, qty, productID)
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "decrement stock rows affected")
	}
	return n > 0, nil
}

func (r *PGRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
	`, qty, productID)
	return errors.Wrap(err, "increment stock")
}
