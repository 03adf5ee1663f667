// Package inventory is a thin domain collaborator of the authorization
// core: stock reads are scoped through the effective principal and the
// adjustment endpoint combines the static action table with the per-scope
// feature flags.
package inventory

import "time"

// StockLevel is the current balance of one product in one warehouse.
type StockLevel struct {
	WarehouseID int64     `json:"warehouse_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Qty         float64   `json:"qty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Adjustment records a manual quantity correction.
type Adjustment struct {
	ID          int64     `json:"id"`
	WarehouseID int64     `json:"warehouse_id"`
	ProductID   int64     `json:"product_id"`
	Qty         float64   `json:"qty"`
	Note        string    `json:"note"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter scopes stock queries. A nil WarehouseID means all warehouses.
type ListFilter struct {
	WarehouseID *int64
	Limit       int
}
