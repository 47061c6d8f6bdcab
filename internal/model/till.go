package model

import "time"

type TillStatus string

const (
	TillStatusOpen   TillStatus = "open"
	TillStatusClosed TillStatus = "closed"
)

// PaymentMethod is the fixed set of rails a sale can settle on. The till keeps
// one running total per method.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodQR       PaymentMethod = "qr"
	MethodKey      PaymentMethod = "key"
	MethodVoucher  PaymentMethod = "voucher"
	MethodDebit    PaymentMethod = "debit"
	MethodCredit   PaymentMethod = "credit"
)

// PaymentMethods lists every valid method, in display order.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodTransfer, MethodQR, MethodKey,
	MethodVoucher, MethodDebit, MethodCredit,
}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// TillTotals holds the accumulated amount per payment method. Fields map 1:1
// to till table columns; the enum is fixed so columns beat JSON here.
type TillTotals struct {
	Cash     float64 `db:"total_cash" json:"cash"`
	Transfer float64 `db:"total_transfer" json:"transfer"`
	QR       float64 `db:"total_qr" json:"qr"`
	Key      float64 `db:"total_key" json:"key"`
	Voucher  float64 `db:"total_voucher" json:"voucher"`
	Debit    float64 `db:"total_debit" json:"debit"`
	Credit   float64 `db:"total_credit" json:"credit"`
}

// Get returns the accumulated amount for a method.
func (t TillTotals) Get(m PaymentMethod) float64 {
	switch m {
	case MethodCash:
		return t.Cash
	case MethodTransfer:
		return t.Transfer
	case MethodQR:
		return t.QR
	case MethodKey:
		return t.Key
	case MethodVoucher:
		return t.Voucher
	case MethodDebit:
		return t.Debit
	case MethodCredit:
		return t.Credit
	}
	return 0
}

// Set overwrites the accumulated amount for a method.
func (t *TillTotals) Set(m PaymentMethod, v float64) {
	switch m {
	case MethodCash:
		t.Cash = v
	case MethodTransfer:
		t.Transfer = v
	case MethodQR:
		t.QR = v
	case MethodKey:
		t.Key = v
	case MethodVoucher:
		t.Voucher = v
	case MethodDebit:
		t.Debit = v
	case MethodCredit:
		t.Credit = v
	}
}

// Sum adds up every method total.
func (t TillTotals) Sum() float64 {
	return t.Cash + t.Transfer + t.QR + t.Key + t.Voucher + t.Debit + t.Credit
}

// Till is one cash-register session. Totals mutate only while the status is
// open; once closed they are frozen and the closure snapshot is authoritative.
type Till struct {
	BaseModel
	OpenedBy       string     `db:"opened_by" json:"opened_by"`
	OpeningBalance float64    `db:"opening_balance" json:"opening_balance"`
	Status         TillStatus `db:"status" json:"status"`
	OpenedAt       time.Time  `db:"opened_at" json:"opened_at"`
	Totals         TillTotals `db:"" json:"totals"`
}

func (t *Till) IsOpen() bool { return t.Status == TillStatusOpen }

// SystemTotal is the expected drawer value at close time.
func (t *Till) SystemTotal() float64 {
	return t.OpeningBalance + t.Totals.Sum()
}

// TillClosure records the physical count taken when a till closes. One per
// till. CountedTotal is canonical; CountedCash is a legacy alias some clients
// still send and read, kept in sync at the boundary.
type TillClosure struct {
	BaseModel
	TillID       string   `db:"till_id" json:"till_id"`
	CountedTotal float64  `db:"counted_total" json:"counted_total"`
	CountedCash  *float64 `db:"counted_cash" json:"counted_cash"`
	SystemTotal  float64  `db:"system_total" json:"system_total"`
	Difference   float64  `db:"difference" json:"difference"`
	Observations string   `db:"observations" json:"observations"`
	ApprovedBy   string   `db:"approved_by" json:"approved_by"`
}

// NormalizeCounts makes the canonical and legacy count fields mirror each
// other so responses always carry both.
func (c *TillClosure) NormalizeCounts() {
	if c.CountedCash == nil {
		v := c.CountedTotal
		c.CountedCash = &v
	}
}
