package sales

import "context"

// Repository reads and mutates sale documents.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
	Create(ctx context.Context, sale Sale) (*Sale, error)
	Delete(ctx context.Context, id int64) error
	ListReturns(ctx context.Context, filter ListFilter) ([]Return, error)
}
