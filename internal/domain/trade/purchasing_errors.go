package trade

import (
	"fmt"

	"github.com/google/uuid"
)

// InvalidOrderStateError indicates the sales order is not in a state that
// permits purchasing. Not retryable.
type InvalidOrderStateError struct {
	OrderID uuid.UUID
	Status  OrderStatus
}

func (e *InvalidOrderStateError) Error() string {
	return fmt.Sprintf("sales order %s is not purchasable in %s status", e.OrderID, e.Status)
}

// EmptyOrderError indicates the sales order has no product-bearing lines
// to analyze. Not retryable.
type EmptyOrderError struct {
	OrderID uuid.UUID
}

func (e *EmptyOrderError) Error() string {
	return fmt.Sprintf("sales order %s has no product lines to purchase", e.OrderID)
}

// UnassignedRequirementsError indicates the plan contains demand with no
// vendor and the caller did not opt into partial generation. It carries the
// affected requirements so the caller can prompt for manual assignment.
type UnassignedRequirementsError struct {
	SalesOrderID uuid.UUID
	Unassigned   []UnassignedRequirement
}

func (e *UnassignedRequirementsError) Error() string {
	return fmt.Sprintf("sales order %s has %d requirement(s) with no vendor assigned", e.SalesOrderID, len(e.Unassigned))
}

// ConcurrentModificationError indicates the sales order's quantities
// changed between analysis and generation. The caller should re-analyze
// and retry; the generator never retries internally.
type ConcurrentModificationError struct {
	SalesOrderID uuid.UUID
	LineID       uuid.UUID
}

func (e *ConcurrentModificationError) Error() string {
	if e.LineID != uuid.Nil {
		return fmt.Sprintf("sales order %s line %s changed since analysis, re-analyze before generating", e.SalesOrderID, e.LineID)
	}
	return fmt.Sprintf("sales order %s changed since analysis, re-analyze before generating", e.SalesOrderID)
}
