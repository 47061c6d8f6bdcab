package product

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// AdjustStock applies a manual correction under a distributed lock; the
	// sale workflows never come through here.
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error)
}
