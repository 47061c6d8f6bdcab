package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/inventory"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	stock  map[string]int
	decErr map[string]error
	incErr map[string]error
}

func newFakeRepo(stock map[string]int) *fakeRepo {
	return &fakeRepo{stock: stock, decErr: map[string]error{}, incErr: map[string]error{}}
}

func (r *fakeRepo) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	if err := r.decErr[id]; err != nil {
		return false, err
	}
	if r.stock[id] < qty {
		return false, nil
	}
	r.stock[id] -= qty
	return true, nil
}

func (r *fakeRepo) IncrementStock(_ context.Context, id string, qty int) error {
	if err := r.incErr[id]; err != nil {
		return err
	}
	r.stock[id] += qty
	return nil
}

func TestReserveItems_AllOrNothing(t *testing.T) {
	repo := newFakeRepo(map[string]int{"a": 3, "b": 1})
	ledger := NewStockLedger(repo, logger.NewNop())

	err := ledger.ReserveItems(context.Background(), []inventory.Reservation{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.stock["a"])
	assert.Equal(t, 0, repo.stock["b"])
}

func TestReserveItems_FailureReleasesPriorReservations(t *testing.T) {
	repo := newFakeRepo(map[string]int{"a": 3, "b": 0})
	ledger := NewStockLedger(repo, logger.NewNop())

	err := ledger.ReserveItems(context.Background(), []inventory.Reservation{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsProductUnavailable(err))

	var pe *apperr.ProductUnavailableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "b", pe.ProductID)

	// a's reservation was rolled back.
	assert.Equal(t, 3, repo.stock["a"])
}

func TestReserveItems_StoreErrorIsInternal(t *testing.T) {
	repo := newFakeRepo(map[string]int{"a": 3, "b": 5})
	repo.decErr["b"] = errors.New("connection reset")
	ledger := NewStockLedger(repo, logger.NewNop())

	err := ledger.ReserveItems(context.Background(), []inventory.Reservation{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
	})
	var ie *apperr.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, repo.stock["a"])
}

func TestReleaseItems_SwallowsFailuresAndReportsThem(t *testing.T) {
	repo := newFakeRepo(map[string]int{"a": 0, "b": 0})
	repo.incErr["b"] = errors.New("store down")
	ledger := NewStockLedger(repo, logger.NewNop())

	failed := ledger.ReleaseItems(context.Background(), []inventory.Reservation{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
	})
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ProductID)
	assert.Equal(t, 2, repo.stock["a"])
}
