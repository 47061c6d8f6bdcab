package till

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/till/dto"
)

type UseCase interface {
	OpenTill(ctx context.Context, input *dto.OpenTillInput) (*model.Till, error)

	// Find returns the till or nil when absent; it never maps absence to an
	// error so workflow callers can decide the failure mode themselves.
	Find(ctx context.Context, id string) (*model.Till, error)
	GetTill(ctx context.Context, id string) (*dto.TillWithClosure, error)
	ListTills(ctx context.Context) ([]model.Till, error)
	CloseTill(ctx context.Context, input *dto.CloseTillInput) (*dto.TillWithClosure, error)
	UpdateTotals(ctx context.Context, input *dto.UpdateTotalsInput) (*model.Till, error)

	Ledger
}

// Ledger is the narrow surface the sale workflows depend on. Both operations
// are guarded on the till being open and report "applied" instead of failing:
// a till closing mid-operation is an expected race, not an error. A revert
// against a closed till is skipped because its totals are frozen.
type Ledger interface {
	ApplyToMethod(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error)
	RevertFromMethod(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error)
}
