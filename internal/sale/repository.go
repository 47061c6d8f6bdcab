package sale

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/sale/dto"
)

type Repository interface {
	Create(ctx context.Context, sale *model.Sale) error

	// FindByID returns nil when the sale does not exist.
	FindByID(ctx context.Context, id string) (*model.Sale, error)

	// Delete removes a sale record. Used only as commit compensation; a
	// client can never delete a sale.
	Delete(ctx context.Context, id string) error

	// MarkVoided flips completed -> voided guarded on the status still being
	// completed, so exactly one of two concurrent voids wins. Returns whether
	// the transition applied.
	MarkVoided(ctx context.Context, id string) (bool, error)

	FindAll(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error)
}
