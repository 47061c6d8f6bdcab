package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/cache"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/product"
	"github.com/fruverhq/fruver-pos/internal/product/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listLimit = 100

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	logger logger.Logger
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, log logger.Logger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if input.Price < 0 {
		return nil, apperr.Validationf("price must be >= 0")
	}
	if input.Stock < 0 {
		return nil, apperr.Validationf("stock must be >= 0")
	}

	now := time.Now()
	var sku *string
	if input.SKU != "" {
		sku = &input.SKU
	}

	p := &model.Product{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      input.Name,
		SKU:       sku,
		Price:     input.Price,
		Stock:     input.Stock,
		IsActive:  true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal("create product", err)
	}
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("get product", err)
	}
	if p == nil {
		return nil, apperr.NotFoundf("product")
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]model.Product, error) {
	items, err := uc.repo.FindAll(ctx, listLimit)
	if err != nil {
		return nil, apperr.Internal("list products", err)
	}
	return items, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	if input.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if input.Price < 0 {
		return nil, apperr.Validationf("price must be >= 0")
	}

	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.Internal("update product", err)
	}
	if p == nil {
		return nil, apperr.NotFoundf("product")
	}

	p.Name = input.Name
	p.Price = input.Price
	p.IsActive = input.IsActive
	if input.SKU != "" {
		p.SKU = &input.SKU
	} else {
		p.SKU = nil
	}

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperr.Internal("update product", err)
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("delete product", err)
	}
	if !deleted {
		return apperr.NotFoundf("product")
	}
	return nil
}

// AdjustStock is the manual correction path (recounts, spoilage). It holds a
// short Redis lock per product so two back-office users cannot interleave
// their corrections; the sale workflows bypass this entirely and rely on the
// guarded decrement instead.
func (uc *productUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	if input.ProductID == "" {
		return nil, apperr.Validationf("productId is required")
	}
	if input.Delta == 0 {
		return nil, apperr.Validationf("delta must be non-zero")
	}

	lockKey := fmt.Sprintf("lock:product-stock:%s", input.ProductID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire stock lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, apperr.Validationf("product is busy, try again")
	}
	defer func() {
		if err := uc.cache.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			uc.logger.Error("failed to release stock lock", zap.Error(err))
		}
	}()

	p, err := uc.repo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, apperr.Internal("adjust stock", err)
	}
	if p == nil {
		return nil, apperr.NotFoundf("product")
	}

	applied, err := uc.repo.AdjustStock(ctx, input.ProductID, input.Delta)
	if err != nil {
		return nil, apperr.Internal("adjust stock", err)
	}
	if !applied {
		return nil, apperr.Validationf("adjustment would make stock negative")
	}

	p.Stock += input.Delta
	uc.logger.Info("manual stock adjustment",
		zap.String("product_id", p.ID),
		zap.Int("delta", input.Delta),
		zap.String("reason", input.Reason),
	)
	return p, nil
}
