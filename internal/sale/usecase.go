package sale

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/sale/dto"
)

type UseCase interface {
	// CommitSale runs the commit saga: validate, reserve stock, record the
	// sale, apply the total to the till. Any failure past the first side
	// effect unwinds every applied effect before the error returns.
	CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Sale, error)

	// VoidSale reverts the till total, flips the sale to voided (guarded
	// against a concurrent void) and restocks the items best-effort.
	VoidSale(ctx context.Context, saleID string) (*model.Sale, error)

	ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error)
}

// TillGateway is the slice of the till component the workflows depend on.
type TillGateway interface {
	Find(ctx context.Context, id string) (*model.Till, error)
	ApplyToMethod(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error)
	RevertFromMethod(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error)
}

// ProductGateway provides the product snapshots the commit workflow prices
// line items from.
type ProductGateway interface {
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}
