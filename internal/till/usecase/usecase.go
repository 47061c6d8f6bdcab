package usecase

import (
	"context"
	"time"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/audit"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/till"
	"github.com/fruverhq/fruver-pos/internal/till/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listLimit = 50

type tillUseCase struct {
	repo   till.Repository
	sink   audit.Sink
	logger logger.Logger
}

func NewTillUseCase(repo till.Repository, sink audit.Sink, log logger.Logger) till.UseCase {
	return &tillUseCase{
		repo:   repo,
		sink:   sink,
		logger: log,
	}
}

func (uc *tillUseCase) OpenTill(ctx context.Context, input *dto.OpenTillInput) (*model.Till, error) {
	if input.OpenedBy == "" {
		return nil, apperr.Validationf("openedBy is required")
	}
	if input.OpeningBalance < 0 {
		return nil, apperr.Validationf("openingBalance must be >= 0")
	}

	now := time.Now()
	t := &model.Till{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OpenedBy:       input.OpenedBy,
		OpeningBalance: input.OpeningBalance,
		Status:         model.TillStatusOpen,
		OpenedAt:       now,
	}

	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, apperr.Internal("open till", err)
	}
	return t, nil
}

func (uc *tillUseCase) Find(ctx context.Context, id string) (*model.Till, error) {
	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find till", err)
	}
	return t, nil
}

func (uc *tillUseCase) GetTill(ctx context.Context, id string) (*dto.TillWithClosure, error) {
	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("get till", err)
	}
	if t == nil {
		return nil, apperr.NotFoundf("till")
	}

	closure, err := uc.repo.FindClosureByTill(ctx, id)
	if err != nil {
		return nil, apperr.Internal("get till closure", err)
	}
	if closure != nil {
		closure.NormalizeCounts()
	}

	return &dto.TillWithClosure{Till: t, Closure: closure}, nil
}

func (uc *tillUseCase) ListTills(ctx context.Context) ([]model.Till, error) {
	items, err := uc.repo.FindAll(ctx, listLimit)
	if err != nil {
		return nil, apperr.Internal("list tills", err)
	}
	return items, nil
}

// CloseTill flips the till to closed and records the physical count. The two
// writes are not transactional: if the closure insert fails, the till is
// reopened so the session is not left closed without its count.
func (uc *tillUseCase) CloseTill(ctx context.Context, input *dto.CloseTillInput) (*dto.TillWithClosure, error) {
	counted, countedCash, err := resolveCount(input)
	if err != nil {
		return nil, err
	}

	t, err := uc.repo.FindByID(ctx, input.TillID)
	if err != nil {
		return nil, apperr.Internal("close till", err)
	}
	if t == nil {
		return nil, apperr.NotFoundf("till")
	}

	applied, err := uc.repo.Close(ctx, input.TillID)
	if err != nil {
		return nil, apperr.Internal("close till", err)
	}
	if !applied {
		return nil, apperr.ErrTillClosed
	}

	// Totals are frozen the instant the status flipped; the values loaded
	// above are the closing snapshot.
	systemTotal := t.SystemTotal()

	now := time.Now()
	closure := &model.TillClosure{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TillID:       t.ID,
		CountedTotal: counted,
		CountedCash:  countedCash,
		SystemTotal:  systemTotal,
		Difference:   counted - systemTotal,
		Observations: input.Observations,
		ApprovedBy:   input.ApprovedBy,
	}

	if err := uc.repo.CreateClosure(ctx, closure); err != nil {
		if reopened, rerr := uc.repo.Reopen(ctx, t.ID); rerr != nil || !reopened {
			uc.logger.Error("till reopen after failed closure did not apply",
				zap.String("till_id", t.ID), zap.Error(rerr))
		}
		if err == till.ErrClosureExists {
			return nil, apperr.Validationf("a closure already exists for this till (double close?)")
		}
		return nil, apperr.Internal("create closure", err)
	}

	t.Status = model.TillStatusClosed
	closure.NormalizeCounts()

	uc.sink.Record(ctx, audit.Event{
		ActorEmail: input.ApprovedBy,
		Action:     "TILL_CLOSED",
		Entity:     "Till",
		EntityID:   t.ID,
		Metadata: map[string]interface{}{
			"system_total":  systemTotal,
			"counted_total": counted,
			"difference":    closure.Difference,
		},
	})

	return &dto.TillWithClosure{Till: t, Closure: closure}, nil
}

func (uc *tillUseCase) UpdateTotals(ctx context.Context, input *dto.UpdateTotalsInput) (*model.Till, error) {
	for method, value := range input.Totals {
		if !method.Valid() {
			return nil, apperr.Validationf("invalid payment method %q", method)
		}
		if value < 0 {
			return nil, apperr.Validationf("invalid value for %s", method)
		}
	}

	t, err := uc.repo.FindByID(ctx, input.TillID)
	if err != nil {
		return nil, apperr.Internal("update totals", err)
	}
	if t == nil {
		return nil, apperr.NotFoundf("till")
	}
	if !t.IsOpen() {
		return nil, apperr.ErrTillClosed
	}

	for method, value := range input.Totals {
		applied, err := uc.repo.SetMethodTotal(ctx, input.TillID, method, value)
		if err != nil {
			return nil, apperr.Internal("update totals", err)
		}
		if !applied {
			return nil, apperr.ErrTillNoLongerOpen
		}
		t.Totals.Set(method, value)
	}

	return t, nil
}

func (uc *tillUseCase) ApplyToMethod(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error) {
	return uc.repo.AddToMethodTotal(ctx, tillID, method, amount)
}

// RevertFromMethod decrements a method total, still guarded on the till being
// open: a closed till's totals belong to its closure and must stay untouched.
func (uc *tillUseCase) RevertFromMethod(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error) {
	return uc.repo.AddToMethodTotal(ctx, tillID, method, -amount)
}

// resolveCount picks the canonical count, falling back to the legacy cash
// field, and validates whichever was sent.
func resolveCount(input *dto.CloseTillInput) (float64, *float64, error) {
	raw := input.CountedTotal
	if raw == nil {
		raw = input.CountedCash
	}
	if raw == nil {
		return 0, nil, apperr.Validationf("countedTotal (preferred) or countedCash (legacy) is required")
	}
	if *raw < 0 {
		return 0, nil, apperr.Validationf("counted amount must be >= 0")
	}

	var legacy *float64
	if input.CountedCash != nil {
		if *input.CountedCash < 0 {
			return 0, nil, apperr.Validationf("countedCash must be >= 0")
		}
		legacy = input.CountedCash
	}

	return *raw, legacy, nil
}
