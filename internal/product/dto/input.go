package dto

type CreateProductInput struct {
	Name  string
	SKU   string
	Price float64
	Stock int
}

// UpdateProductInput deliberately has no stock field: stock moves only
// through sale workflows or the lock-guarded adjustment.
type UpdateProductInput struct {
	ID       string
	Name     string
	SKU      string
	Price    float64
	IsActive bool
}

type AdjustStockInput struct {
	ProductID string
	Delta     int
	Reason    string
}
