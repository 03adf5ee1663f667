package inventory

import "context"

// Repository reads stock levels and records adjustments.
type Repository interface {
	ListStock(ctx context.Context, filter ListFilter) ([]StockLevel, error)
	RecordAdjustment(ctx context.Context, adj Adjustment) (*Adjustment, error)
}
