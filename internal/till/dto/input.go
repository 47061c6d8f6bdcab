package dto

import "github.com/fruverhq/fruver-pos/internal/model"

type OpenTillInput struct {
	OpenedBy       string
	OpeningBalance float64
}

// CloseTillInput carries the physical count. CountedTotal is the canonical
// field; CountedCash is the legacy alias older clients still send. At least
// one must be present.
type CloseTillInput struct {
	TillID       string
	CountedTotal *float64
	CountedCash  *float64
	Observations string
	ApprovedBy   string
}

type UpdateTotalsInput struct {
	TillID string
	Totals map[model.PaymentMethod]float64
}

type TillWithClosure struct {
	Till    *model.Till        `json:"till"`
	Closure *model.TillClosure `json:"closure"`
}
