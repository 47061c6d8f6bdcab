package inventory

import "context"

// Repository exposes the two single-row stock mutations the ledger needs.
type Repository interface {
	// DecrementStock applies `stock -= qty` only while the product is active
	// and has at least qty units. Returns whether the guard matched.
	DecrementStock(ctx context.Context, productID string, qty int) (bool, error)

	// IncrementStock applies `stock += qty` unconditionally.
	IncrementStock(ctx context.Context, productID string, qty int) error
}
