package dto

import "github.com/fruverhq/fruver-pos/internal/model"

type CommitItemInput struct {
	ProductID string
	Quantity  int
}

// CommitSaleInput carries only references and quantities: names, prices and
// totals are computed server-side from the products at commit time.
type CommitSaleInput struct {
	TillID string
	Method model.PaymentMethod
	Items  []CommitItemInput
	Note   string
}

const (
	StatusFilterCompleted = "completed"
	StatusFilterVoided    = "voided"
	StatusFilterAll       = "all"
)

// SaleFilters narrows listings. An empty Status means completed, matching the
// original listing default.
type SaleFilters struct {
	TillID string
	Status string
}
