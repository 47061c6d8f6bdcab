package usecase

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/inventory"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"go.uber.org/zap"
)

type stockLedger struct {
	repo   inventory.Repository
	logger logger.Logger
}

func NewStockLedger(repo inventory.Repository, log logger.Logger) inventory.Ledger {
	return &stockLedger{
		repo:   repo,
		logger: log,
	}
}

// ReserveItems decrements stock item by item. Each decrement is individually
// atomic; on the first failure everything already reserved is released before
// the error is returned, so a failed reserve leaves no trace.
func (l *stockLedger) ReserveItems(ctx context.Context, items []inventory.Reservation) error {
	reserved := make([]inventory.Reservation, 0, len(items))

	for _, it := range items {
		applied, err := l.repo.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			l.ReleaseItems(ctx, reserved)
			return apperr.Internal("reserve stock", err)
		}
		if !applied {
			l.ReleaseItems(ctx, reserved)
			return apperr.ProductUnavailable(it.ProductID)
		}
		reserved = append(reserved, it)
	}

	return nil
}

// ReleaseItems gives stock back. Compensation only: a failure here must never
// fail the caller's workflow, so errors are logged and swallowed; the failed
// items are returned for the caller's own records.
func (l *stockLedger) ReleaseItems(ctx context.Context, items []inventory.Reservation) []inventory.Reservation {
	var failed []inventory.Reservation
	for _, it := range items {
		if err := l.repo.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			l.logger.Error("stock release failed, inventory may be understated",
				zap.String("product_id", it.ProductID),
				zap.Int("quantity", it.Quantity),
				zap.Error(err),
			)
			failed = append(failed, it)
		}
	}
	return failed
}
