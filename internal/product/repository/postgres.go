package repository

import (
	"context"
	"database/sql"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, price, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.SKU, p.Price, p.Stock, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return errors.Wrap(err, "create product")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `
		SELECT id, name, sku, price, stock, is_active, created_at, updated_at
		FROM products WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find product")
	}
	return &p, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, name, sku, price, stock, is_active, created_at, updated_at
		FROM products WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	query = r.DB.Rebind(query)

	items := []model.Product{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	return items, nil
}

func (r *PGRepository) FindAll(ctx context.Context, limit int) ([]model.Product, error) {
	items := []model.Product{}
	err := r.DB.SelectContext(ctx, &items, `
		SELECT id, name, sku, price, stock, is_active, created_at, updated_at
		FROM products ORDER BY created_at DESC LIMIT $1
	`, limit)
	return items, errors.Wrap(err, "list products")
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET name = $1, sku = $2, price = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`, p.Name, p.SKU, p.Price, p.IsActive, p.ID)
	return errors.Wrap(err, "update product")
}

func (r *PGRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete product")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "delete product rows affected")
	}
	return n > 0, nil
}

func (r *PGRepository) AdjustStock(ctx context.Context, id string, delta int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
	`, delta, id)
	if err != nil {
		return false, errors.Wrap(err, "adjust stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "adjust stock rows affected")
	}
	return n > 0, nil
}
