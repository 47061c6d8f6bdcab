package product

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error

	// FindByID returns nil when the product does not exist.
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindAll(ctx context.Context, limit int) ([]model.Product, error)

	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) (bool, error)

	// AdjustStock applies `stock += delta` guarded against going negative.
	// Returns whether the guard matched.
	AdjustStock(ctx context.Context, id string, delta int) (bool, error)
}
