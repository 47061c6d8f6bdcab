package model

type Product struct {
	BaseModel
	Name     string  `db:"name" json:"name"`
	SKU      *string `db:"sku" json:"sku"` // Nullable
	Price    float64 `db:"price" json:"price"`
	Stock    int     `db:"stock" json:"stock"`
	IsActive bool    `db:"is_active" json:"is_active"`
}
