package inventory

import "context"

// Reservation is one line of stock to take or give back.
type Reservation struct {
	ProductID string
	Quantity  int
}

// Ledger owns product stock counts. Reservations are guarded atomic
// decrements; releases are unconditional increments used as compensation.
type Ledger interface {
	// ReserveItems reserves stock item by item, in order. If item k fails,
	// items 1..k-1 are released (same order) before the error surfaces.
	// Failure is apperr.ProductUnavailableError or an internal store error.
	ReserveItems(ctx context.Context, items []Reservation) error

	// ReleaseItems restores stock best-effort: underlying store errors are
	// logged and swallowed, never failing the caller's workflow. The items
	// that could not be released are returned so callers can surface the
	// drift (e.g. on an audit event).
	ReleaseItems(ctx context.Context, items []Reservation) []Reservation
}
