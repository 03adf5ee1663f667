// Package sales is a thin domain collaborator of the authorization core:
// after the route guard admits a request, handlers here read the effective
// principal to scope their queries and to gate mutating actions. The full
// sales workflow lives in the backend services; this surface exists for the
// dashboard's scoped reads and the few gated mutations.
package sales

import "time"

// Sale is a posted sale document.
type Sale struct {
	ID         int64     `json:"id"`
	BranchID   int64     `json:"branch_id"`
	CustomerID *int64    `json:"customer_id"`
	Number     string    `json:"number"`
	Total      float64   `json:"total"`
	Status     string    `json:"status"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Return is a posted sales return document.
type Return struct {
	ID        int64     `json:"id"`
	SaleID    int64     `json:"sale_id"`
	BranchID  int64     `json:"branch_id"`
	Total     float64   `json:"total"`
	Reason    string    `json:"reason"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter scopes sale queries. A nil BranchID means all branches.
type ListFilter struct {
	BranchID *int64
	Limit    int
}
