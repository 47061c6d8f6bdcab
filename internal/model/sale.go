package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoided    SaleStatus = "voided"
)

// SaleItem is an immutable snapshot of a product at commit time. Name and
// price are copied so later product edits never change a recorded sale.
type SaleItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// SaleItems is stored as a single JSONB column; the snapshot is written once
// and never updated row by row.
type SaleItems []SaleItem

func (s SaleItems) Value() (driver.Value, error) {
	if s == nil {
		s = SaleItems{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal sale items")
	}
	return b, nil
}

func (s *SaleItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = SaleItems{}
		return nil
	}
	return errors.Errorf("unsupported sale items source %T", src)
}

// Total sums the item subtotals.
func (s SaleItems) Total() float64 {
	var total float64
	for _, it := range s {
		total += it.Subtotal
	}
	return total
}

// Sale is immutable once created except for the completed -> voided
// transition, which is guarded against double voids.
type Sale struct {
	BaseModel
	TillID string        `db:"till_id" json:"till_id"`
	Method PaymentMethod `db:"method" json:"method"`
	Total  float64       `db:"total" json:"total"`
	Items  SaleItems     `db:"items" json:"items"`
	Status SaleStatus    `db:"status" json:"status"`
	Note   string        `db:"note" json:"note"`
}

func (s *Sale) IsVoided() bool { return s.Status == SaleStatusVoided }
