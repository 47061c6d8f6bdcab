package usecase

import (
	"context"
	"time"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/audit"
	"github.com/fruverhq/fruver-pos/internal/inventory"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/sale"
	"github.com/fruverhq/fruver-pos/internal/sale/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type saleUseCase struct {
	repo       sale.Repository
	products   sale.ProductGateway
	stock      inventory.Ledger
	tills      sale.TillGateway
	sink       audit.Sink
	checkpoint sale.Checkpoint
	logger     logger.Logger
}

func NewSaleUseCase(
	repo sale.Repository,
	products sale.ProductGateway,
	stock inventory.Ledger,
	tills sale.TillGateway,
	sink audit.Sink,
	checkpoint sale.Checkpoint,
	log logger.Logger,
) sale.UseCase {
	if checkpoint == nil {
		checkpoint = sale.NopCheckpoint{}
	}
	return &saleUseCase{
		repo:       repo,
		products:   products,
		stock:      stock,
		tills:      tills,
		sink:       sink,
		checkpoint: checkpoint,
		logger:     log,
	}
}

// CommitSale is a saga over three records that the store cannot update in one
// transaction. Each step is a single-row guarded write; every applied effect
// is pushed onto a compensation stack that unwinds in reverse (till revert,
// sale delete, stock release) if a later step fails.
func (uc *saleUseCase) CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Sale, error) {
	if err := validateCommitInput(input); err != nil {
		return nil, err
	}

	t, err := uc.tills.Find(ctx, input.TillID)
	if err != nil {
		return nil, apperr.Internal("load till", err)
	}
	if t == nil {
		return nil, apperr.NotFoundf("till")
	}
	if !t.IsOpen() {
		return nil, apperr.ErrTillClosed
	}

	byID, err := uc.loadProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	// 1) Reserve stock, item by item. A failure here releases whatever was
	// already taken inside the ledger; nothing else has happened yet.
	reservations := make([]inventory.Reservation, 0, len(input.Items))
	for _, it := range input.Items {
		reservations = append(reservations, inventory.Reservation{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	if err := uc.stock.ReserveItems(ctx, reservations); err != nil {
		return nil, err
	}

	comp := newCompensator(uc.logger)
	comp.push("release reserved stock", func(ctx context.Context) error {
		uc.stock.ReleaseItems(ctx, reservations)
		return nil
	})

	// 2) Snapshot line items and compute the total from current product
	// prices. Caller-supplied prices are never trusted.
	items, total := buildSnapshot(input.Items, byID)

	now := time.Now()
	s := &model.Sale{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TillID:    input.TillID,
		Method:    input.Method,
		Total:     total,
		Items:     items,
		Status:    model.SaleStatusCompleted,
		Note:      input.Note,
	}

	// 3) Record the sale.
	if err := uc.repo.Create(ctx, s); err != nil {
		uc.fail(ctx, comp, s, "create sale record")
		return nil, apperr.Internal("create sale", err)
	}
	comp.push("delete sale record", func(ctx context.Context) error {
		return uc.repo.Delete(ctx, s.ID)
	})

	if err := uc.checkpoint.Fire(ctx, sale.PointAfterSaleCreate); err != nil {
		uc.fail(ctx, comp, s, sale.PointAfterSaleCreate)
		return nil, err
	}

	// 4) Apply the total to the till. "Not applied" means the till closed
	// between validation and now; that race compensates and reports cleanly.
	applied, err := uc.tills.ApplyToMethod(ctx, t.ID, input.Method, total)
	if err != nil {
		uc.fail(ctx, comp, s, "apply total to till")
		return nil, apperr.Internal("apply total to till", err)
	}
	if !applied {
		uc.fail(ctx, comp, s, "till closed before apply")
		return nil, apperr.ErrTillNoLongerOpen
	}
	comp.push("revert till total", func(ctx context.Context) error {
		_, err := uc.tills.RevertFromMethod(ctx, t.ID, input.Method, total)
		return err
	})

	if err := uc.checkpoint.Fire(ctx, sale.PointAfterTillApply); err != nil {
		uc.fail(ctx, comp, s, sale.PointAfterTillApply)
		return nil, err
	}

	uc.sink.Record(ctx, audit.Event{
		Action:   "SALE_COMMITTED",
		Entity:   "Sale",
		EntityID: s.ID,
		Metadata: map[string]interface{}{
			"till_id": s.TillID,
			"method":  string(s.Method),
			"total":   s.Total,
		},
	})

	return s, nil
}

func (uc *saleUseCase) VoidSale(ctx context.Context, saleID string) (*model.Sale, error) {
	if saleID == "" {
		return nil, apperr.Validationf("sale id is required")
	}

	s, err := uc.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, apperr.Internal("load sale", err)
	}
	if s == nil {
		return nil, apperr.NotFoundf("sale")
	}
	if s.IsVoided() {
		return nil, apperr.ErrAlreadyVoided
	}

	t, err := uc.tills.Find(ctx, s.TillID)
	if err != nil {
		return nil, apperr.Internal("load till", err)
	}
	if t == nil {
		return nil, apperr.NotFoundf("till")
	}
	if !t.IsOpen() {
		return nil, apperr.ErrTillClosed
	}

	// Stored records should always satisfy these; a violation means the row
	// was corrupted outside the workflows.
	if !s.Method.Valid() {
		return nil, apperr.Internal("void sale", errInvalidStored("method"))
	}
	if s.Total < 0 {
		return nil, apperr.Internal("void sale", errInvalidStored("total"))
	}

	// 1) Revert the till total first, guarded on the till still being open.
	applied, err := uc.tills.RevertFromMethod(ctx, t.ID, s.Method, s.Total)
	if err != nil {
		return nil, apperr.Internal("revert till total", err)
	}
	if !applied {
		return nil, apperr.ErrTillClosed
	}

	// 2) Flip the status, guarded against a concurrent void. Losing the race
	// means someone else already reverted; give the amount back.
	voided, err := uc.repo.MarkVoided(ctx, s.ID)
	if err != nil || !voided {
		if reapplied, rerr := uc.tills.ApplyToMethod(ctx, t.ID, s.Method, s.Total); rerr != nil || !reapplied {
			uc.logger.Error("re-apply of reverted till total did not apply",
				zap.String("sale_id", s.ID),
				zap.String("till_id", t.ID),
				zap.Error(rerr),
			)
		}
		if err != nil {
			return nil, apperr.Internal("mark sale voided", err)
		}
		return nil, apperr.ErrAlreadyVoided
	}
	s.Status = model.SaleStatusVoided

	// 3) Restock, best-effort. A failed restock never rolls back the void:
	// the drift is an operational alert, not a transactional failure.
	restock := make([]inventory.Reservation, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		restock = append(restock, inventory.Reservation{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	failedRestock := uc.stock.ReleaseItems(ctx, restock)

	meta := map[string]interface{}{
		"till_id": s.TillID,
		"method":  string(s.Method),
		"total":   s.Total,
	}
	if len(failedRestock) > 0 {
		ids := make([]string, 0, len(failedRestock))
		for _, r := range failedRestock {
			ids = append(ids, r.ProductID)
		}
		meta["restock_failed_product_ids"] = ids
	}
	uc.sink.Record(ctx, audit.Event{
		Action:   "SALE_VOIDED",
		Entity:   "Sale",
		EntityID: s.ID,
		Metadata: meta,
	})

	return s, nil
}

func (uc *saleUseCase) ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error) {
	if filters == nil {
		filters = &dto.SaleFilters{}
	}
	items, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperr.Internal("list sales", err)
	}
	return items, nil
}

// fail unwinds the compensation stack and records the failed attempt. The
// triggering error is always the one returned to the caller; unwind problems
// only ever surface as logs.
func (uc *saleUseCase) fail(ctx context.Context, comp *compensator, s *model.Sale, step string) {
	comp.unwind(ctx)
	uc.sink.Record(ctx, audit.Event{
		Action:   "SALE_COMMIT_FAILED",
		Entity:   "Sale",
		EntityID: s.ID,
		Metadata: map[string]interface{}{
			"till_id": s.TillID,
			"step":    step,
		},
	})
}

func (uc *saleUseCase) loadProducts(ctx context.Context, items []dto.CommitItemInput) (map[string]model.Product, error) {
	seen := map[string]bool{}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	products, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load products", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok || !p.IsActive {
			return nil, apperr.ProductUnavailable(it.ProductID)
		}
	}
	return byID, nil
}

func buildSnapshot(items []dto.CommitItemInput, byID map[string]model.Product) (model.SaleItems, float64) {
	snapshot := make(model.SaleItems, 0, len(items))
	var total float64

	for _, it := range items {
		p := byID[it.ProductID]
		subtotal := p.Price * float64(it.Quantity)
		snapshot = append(snapshot, model.SaleItem{
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
		})
		total += subtotal
	}
	return snapshot, total
}

func validateCommitInput(input *dto.CommitSaleInput) error {
	if input == nil {
		return apperr.Validationf("request body is required")
	}
	if input.TillID == "" {
		return apperr.Validationf("tillId is required")
	}
	if !input.Method.Valid() {
		return apperr.Validationf("invalid payment method %q", input.Method)
	}
	if len(input.Items) == 0 {
		return apperr.Validationf("items is required (non-empty array)")
	}
	for i, it := range input.Items {
		if it.ProductID == "" {
			return apperr.Validationf("items[%d].productId is required", i)
		}
		if it.Quantity <= 0 {
			return apperr.Validationf("items[%d].quantity must be > 0", i)
		}
	}
	return nil
}

type invalidStoredFieldError struct {
	field string
}

func (e *invalidStoredFieldError) Error() string {
	return "invalid " + e.field + " on stored sale"
}

func errInvalidStored(field string) error {
	return &invalidStoredFieldError{field: field}
}
