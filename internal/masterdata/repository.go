package masterdata

import "context"

// Repository reads location master data.
type Repository interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	GetBranch(ctx context.Context, id int64) (*Branch, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (*Warehouse, error)
}
