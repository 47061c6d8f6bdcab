package till

import (
	"context"
	"errors"

	"github.com/fruverhq/fruver-pos/internal/model"
)

// ErrClosureExists signals the unique-per-till closure constraint fired,
// i.e. a double close raced past the status guard.
var ErrClosureExists = errors.New("closure already exists for till")

type Repository interface {
	Create(ctx context.Context, till *model.Till) error
	FindByID(ctx context.Context, id string) (*model.Till, error)
	FindAll(ctx context.Context, limit int) ([]model.Till, error)

	// AddToMethodTotal increments (or with a negative amount, decrements) one
	// method total, only while the till is open. Returns whether it applied.
	AddToMethodTotal(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error)

	// SetMethodTotal overwrites one method total, only while the till is open.
	SetMethodTotal(ctx context.Context, tillID string, method model.PaymentMethod, value float64) (bool, error)

	// Close flips open -> closed; Reopen flips closed -> open. Both guarded,
	// both reporting whether the transition applied. Reopen exists solely for
	// the close workflow's own rollback and is never exposed to clients.
	Close(ctx context.Context, tillID string) (bool, error)
	Reopen(ctx context.Context, tillID string) (bool, error)

	CreateClosure(ctx context.Context, closure *model.TillClosure) error
	FindClosureByTill(ctx context.Context, tillID string) (*model.TillClosure, error)
}
