package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/audit"
	inventoryusecase "github.com/fruverhq/fruver-pos/internal/inventory/usecase"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/sale"
	"github.com/fruverhq/fruver-pos/internal/sale/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaleRepo struct {
	mu        sync.Mutex
	sales     map[string]*model.Sale
	createErr error
	deleted   []string

	// forceVoidLost makes MarkVoided report the guarded flip as not applied,
	// as if a concurrent void won between the read and the write.
	forceVoidLost bool
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[string]*model.Sale{}}
}

func (r *fakeSaleRepo) Create(_ context.Context, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id string) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeSaleRepo) MarkVoided(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceVoidLost {
		return false, nil
	}
	s, ok := r.sales[id]
	if !ok || s.Status != model.SaleStatusCompleted {
		return false, nil
	}
	s.Status = model.SaleStatusVoided
	return true, nil
}

func (r *fakeSaleRepo) FindAll(_ context.Context, _ *dto.SaleFilters) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Sale{}
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, nil
}

type fakeInventoryRepo struct {
	mu     sync.Mutex
	stock  map[string]int
	incErr map[string]error
}

func newFakeInventoryRepo(stock map[string]int) *fakeInventoryRepo {
	return &fakeInventoryRepo{stock: stock, incErr: map[string]error{}}
}

func (r *fakeInventoryRepo) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.stock[id]
	if !ok || cur < qty {
		return false, nil
	}
	r.stock[id] = cur - qty
	return true, nil
}

func (r *fakeInventoryRepo) IncrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.incErr[id]; err != nil {
		return err
	}
	r.stock[id] += qty
	return nil
}

type tillOp struct {
	tillID string
	method model.PaymentMethod
	amount float64
}

type fakeTills struct {
	mu   sync.Mutex
	till *model.Till

	applyOK   bool
	applyErr  error
	revertOK  bool
	applies   []tillOp
	reverts   []tillOp
	findErr   error
}

func newFakeTills(t *model.Till) *fakeTills {
	return &fakeTills{till: t, applyOK: true, revertOK: true}
}

func (f *fakeTills) Find(_ context.Context, id string) (*model.Till, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.till == nil || f.till.ID != id {
		return nil, nil
	}
	cp := *f.till
	return &cp, nil
}

func (f *fakeTills) ApplyToMethod(_ context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return false, f.applyErr
	}
	if !f.applyOK {
		return false, nil
	}
	f.applies = append(f.applies, tillOp{tillID: tillID, method: method, amount: amount})
	return true, nil
}

func (f *fakeTills) RevertFromMethod(_ context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.revertOK {
		return false, nil
	}
	f.reverts = append(f.reverts, tillOp{tillID: tillID, method: method, amount: amount})
	return true, nil
}

type fakeProducts struct {
	byID map[string]model.Product
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *captureSink) Record(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *captureSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	uc        sale.UseCase
	saleRepo  *fakeSaleRepo
	inventory *fakeInventoryRepo
	tills     *fakeTills
	sink      *captureSink
}

func openTill() *model.Till {
	return &model.Till{
		BaseModel: model.BaseModel{ID: "till-1"},
		Status:    model.TillStatusOpen,
	}
}

func newFixture(t *model.Till, stock map[string]int, products map[string]model.Product, checkpoint sale.Checkpoint) *fixture {
	log := logger.NewNop()
	saleRepo := newFakeSaleRepo()
	inv := newFakeInventoryRepo(stock)
	tills := newFakeTills(t)
	sink := &captureSink{}

	uc := NewSaleUseCase(
		saleRepo,
		&fakeProducts{byID: products},
		inventoryusecase.NewStockLedger(inv, log),
		tills,
		sink,
		checkpoint,
		log,
	)
	return &fixture{uc: uc, saleRepo: saleRepo, inventory: inv, tills: tills, sink: sink}
}

func twoProducts() map[string]model.Product {
	return map[string]model.Product{
		"p1": {BaseModel: model.BaseModel{ID: "p1"}, Name: "Mango", Price: 3.5, IsActive: true},
		"p2": {BaseModel: model.BaseModel{ID: "p2"}, Name: "Papaya", Price: 5.0, IsActive: true},
	}
}

func commitInput() *dto.CommitSaleInput {
	return &dto.CommitSaleInput{
		TillID: "till-1",
		Method: model.MethodCash,
		Items: []dto.CommitItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}
}

func TestCommitSale_Succeeds(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)

	s, err := f.uc.CommitSale(context.Background(), commitInput())
	require.NoError(t, err)

	// Total comes from stored prices, never from the caller.
	assert.Equal(t, 12.0, s.Total)
	assert.Equal(t, model.SaleStatusCompleted, s.Status)
	assert.Len(t, s.Items, 2)
	assert.Equal(t, "Mango", s.Items[0].Name)
	assert.Equal(t, 7.0, s.Items[0].Subtotal)

	assert.Equal(t, 8, f.inventory.stock["p1"])
	assert.Equal(t, 4, f.inventory.stock["p2"])

	require.Len(t, f.tills.applies, 1)
	assert.Equal(t, tillOp{tillID: "till-1", method: model.MethodCash, amount: 12.0}, f.tills.applies[0])
	assert.Empty(t, f.tills.reverts)

	stored, err := f.saleRepo.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, []string{"SALE_COMMITTED"}, f.sink.actions())
}

func TestCommitSale_Validation(t *testing.T) {
	f := newFixture(openTill(), map[string]int{}, twoProducts(), nil)

	cases := []struct {
		name  string
		input *dto.CommitSaleInput
	}{
		{"missing till", &dto.CommitSaleInput{Method: model.MethodCash, Items: []dto.CommitItemInput{{ProductID: "p1", Quantity: 1}}}},
		{"bad method", &dto.CommitSaleInput{TillID: "till-1", Method: "barter", Items: []dto.CommitItemInput{{ProductID: "p1", Quantity: 1}}}},
		{"no items", &dto.CommitSaleInput{TillID: "till-1", Method: model.MethodCash}},
		{"zero quantity", &dto.CommitSaleInput{TillID: "till-1", Method: model.MethodCash, Items: []dto.CommitItemInput{{ProductID: "p1", Quantity: 0}}}},
		{"missing product id", &dto.CommitSaleInput{TillID: "till-1", Method: model.MethodCash, Items: []dto.CommitItemInput{{Quantity: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CommitSale(context.Background(), tc.input)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCommitSale_TillNotFound(t *testing.T) {
	f := newFixture(nil, map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommitSale_TillClosed(t *testing.T) {
	till := openTill()
	till.Status = model.TillStatusClosed
	f := newFixture(till, map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.ErrorIs(t, err, apperr.ErrTillClosed)
	assert.Equal(t, 10, f.inventory.stock["p1"])
}

func TestCommitSale_UnknownProduct(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10}, map[string]model.Product{
		"p1": {BaseModel: model.BaseModel{ID: "p1"}, Name: "Mango", Price: 3.5, IsActive: true},
	}, nil)

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.True(t, apperr.IsProductUnavailable(err))
	assert.Equal(t, 10, f.inventory.stock["p1"])
}

func TestCommitSale_InactiveProduct(t *testing.T) {
	products := twoProducts()
	p2 := products["p2"]
	p2.IsActive = false
	products["p2"] = p2
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, products, nil)

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.True(t, apperr.IsProductUnavailable(err))
	assert.Equal(t, 10, f.inventory.stock["p1"])
}

func TestCommitSale_InsufficientStockReleasesPriorReservations(t *testing.T) {
	// p1 reserves fine, p2 has nothing left; p1 must come back.
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 0}, twoProducts(), nil)

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.True(t, apperr.IsProductUnavailable(err))
	assert.Equal(t, 10, f.inventory.stock["p1"])
	assert.Empty(t, f.saleRepo.sales)
	assert.Empty(t, f.tills.applies)
}

func TestCommitSale_SaleCreateFailureReleasesStock(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	f.saleRepo.createErr = errors.New("insert exploded")

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	require.Error(t, err)
	var ie *apperr.InternalError
	assert.ErrorAs(t, err, &ie)

	assert.Equal(t, 10, f.inventory.stock["p1"])
	assert.Equal(t, 5, f.inventory.stock["p2"])
	assert.Empty(t, f.tills.applies)
	assert.Equal(t, []string{"SALE_COMMIT_FAILED"}, f.sink.actions())
}

func TestCommitSale_TillClosesBetweenCheckAndApply(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	f.tills.applyOK = false

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.ErrorIs(t, err, apperr.ErrTillNoLongerOpen)

	// Full unwind: sale deleted, stock back, till never touched.
	assert.Empty(t, f.saleRepo.sales)
	assert.Len(t, f.saleRepo.deleted, 1)
	assert.Equal(t, 10, f.inventory.stock["p1"])
	assert.Equal(t, 5, f.inventory.stock["p2"])
	assert.Equal(t, []string{"SALE_COMMIT_FAILED"}, f.sink.actions())
}

func TestCommitSale_ForcedFaultAfterSaleCreate(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), sale.ContextCheckpoint{})

	ctx := sale.WithFaults(context.Background(), sale.PointAfterSaleCreate)
	_, err := f.uc.CommitSale(ctx, commitInput())

	var ff *sale.ForcedFaultError
	require.ErrorAs(t, err, &ff)
	assert.Equal(t, sale.PointAfterSaleCreate, ff.Point)

	assert.Empty(t, f.saleRepo.sales)
	assert.Equal(t, 10, f.inventory.stock["p1"])
	assert.Empty(t, f.tills.applies)
}

func TestCommitSale_ForcedFaultAfterTillApply(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), sale.ContextCheckpoint{})

	ctx := sale.WithFaults(context.Background(), sale.PointAfterTillApply)
	_, err := f.uc.CommitSale(ctx, commitInput())

	var ff *sale.ForcedFaultError
	require.ErrorAs(t, err, &ff)

	// Everything unwinds, including the till total that was already applied.
	assert.Empty(t, f.saleRepo.sales)
	assert.Equal(t, 10, f.inventory.stock["p1"])
	require.Len(t, f.tills.applies, 1)
	require.Len(t, f.tills.reverts, 1)
	assert.Equal(t, f.tills.applies[0], f.tills.reverts[0])
}

func TestCommitSale_CheckpointsInertWithoutArmedContext(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), sale.ContextCheckpoint{})

	_, err := f.uc.CommitSale(context.Background(), commitInput())
	assert.NoError(t, err)
}

func TestCommitSale_ConcurrentCommitsNeverOversell(t *testing.T) {
	// 5 units, 10 goroutines buying 1 each: exactly 5 must succeed.
	products := map[string]model.Product{
		"p1": {BaseModel: model.BaseModel{ID: "p1"}, Name: "Mango", Price: 2.0, IsActive: true},
	}
	f := newFixture(openTill(), map[string]int{"p1": 5}, products, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CommitSale(context.Background(), &dto.CommitSaleInput{
				TillID: "till-1",
				Method: model.MethodCash,
				Items:  []dto.CommitItemInput{{ProductID: "p1", Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !apperr.IsProductUnavailable(err) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, f.inventory.stock["p1"])
	assert.Len(t, f.saleRepo.sales, 5)
}

func commitOne(t *testing.T, f *fixture) *model.Sale {
	t.Helper()
	s, err := f.uc.CommitSale(context.Background(), commitInput())
	require.NoError(t, err)
	return s
}

func TestVoidSale_Succeeds(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	s := commitOne(t, f)

	voided, err := f.uc.VoidSale(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusVoided, voided.Status)

	// Till total reverted, stock restored.
	require.Len(t, f.tills.reverts, 1)
	assert.Equal(t, tillOp{tillID: "till-1", method: model.MethodCash, amount: 12.0}, f.tills.reverts[0])
	assert.Equal(t, 10, f.inventory.stock["p1"])
	assert.Equal(t, 5, f.inventory.stock["p2"])

	assert.Equal(t, []string{"SALE_COMMITTED", "SALE_VOIDED"}, f.sink.actions())
}

func TestVoidSale_NotFound(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)

	_, err := f.uc.VoidSale(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVoidSale_AlreadyVoided(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	s := commitOne(t, f)

	_, err := f.uc.VoidSale(context.Background(), s.ID)
	require.NoError(t, err)

	_, err = f.uc.VoidSale(context.Background(), s.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyVoided)

	// The second void must not touch the till or the stock again.
	assert.Len(t, f.tills.reverts, 1)
	assert.Equal(t, 10, f.inventory.stock["p1"])
}

func TestVoidSale_TillClosedLeavesSaleIntact(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	s := commitOne(t, f)

	f.tills.till.Status = model.TillStatusClosed

	_, err := f.uc.VoidSale(context.Background(), s.ID)
	assert.ErrorIs(t, err, apperr.ErrTillClosed)

	stored, _ := f.saleRepo.FindByID(context.Background(), s.ID)
	assert.Equal(t, model.SaleStatusCompleted, stored.Status)
	assert.Equal(t, 8, f.inventory.stock["p1"])
}

func TestVoidSale_RevertGuardFailsReportsTillClosed(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	s := commitOne(t, f)

	// Till reads open but the guarded revert does not apply (closed mid-void).
	f.tills.revertOK = false

	_, err := f.uc.VoidSale(context.Background(), s.ID)
	assert.ErrorIs(t, err, apperr.ErrTillClosed)

	stored, _ := f.saleRepo.FindByID(context.Background(), s.ID)
	assert.Equal(t, model.SaleStatusCompleted, stored.Status)
}

func TestVoidSale_LostVoidRaceReappliesTillTotal(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	s := commitOne(t, f)

	// The read sees completed but the guarded flip loses to a concurrent void.
	f.saleRepo.forceVoidLost = true

	_, err := f.uc.VoidSale(context.Background(), s.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyVoided)

	// The already-reverted amount went back onto the till, and no restock ran.
	require.Len(t, f.tills.reverts, 1)
	require.Len(t, f.tills.applies, 2)
	assert.Equal(t, f.tills.reverts[0], f.tills.applies[1])
	assert.Equal(t, 8, f.inventory.stock["p1"])
	assert.Equal(t, 4, f.inventory.stock["p2"])
}

func TestVoidSale_RestockFailureStillVoids(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	s := commitOne(t, f)

	f.inventory.incErr["p2"] = errors.New("store down")

	voided, err := f.uc.VoidSale(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusVoided, voided.Status)

	// p1 restocked, p2 drifted; the drift lands in the audit metadata.
	assert.Equal(t, 10, f.inventory.stock["p1"])
	assert.Equal(t, 4, f.inventory.stock["p2"])

	events := f.sink.events
	last := events[len(events)-1]
	assert.Equal(t, "SALE_VOIDED", last.Action)
	assert.Equal(t, []string{"p2"}, last.Metadata["restock_failed_product_ids"])
}

func TestListSales_NilFiltersDefaults(t *testing.T) {
	f := newFixture(openTill(), map[string]int{"p1": 10, "p2": 5}, twoProducts(), nil)
	commitOne(t, f)

	items, err := f.uc.ListSales(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
