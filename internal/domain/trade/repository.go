package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
)

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByIDForTenant finds a sales order by ID for a specific tenant,
	// with its items preloaded
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	// FindByOrderNumber finds a sales order by order number for a tenant
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*SalesOrder, error)

	// FindAllForTenant finds all sales orders for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SalesOrder, error)

	// FindByStatus finds sales orders by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status OrderStatus, filter shared.Filter) ([]SalesOrder, error)

	// Save creates or updates a sales order
	Save(ctx context.Context, order *SalesOrder) error

	// SaveWithLock saves with optimistic locking on the version column;
	// returns shared.ErrConcurrencyConflict when the stored version moved
	SaveWithLock(ctx context.Context, order *SalesOrder) error

	// GenerateOrderNumber produces the next sequential SO number for a tenant
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// DeleteForTenant deletes a sales order for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant finds a purchase order by ID for a specific tenant,
	// with its items preloaded
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber finds a purchase order by order number for a tenant
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)

	// FindBySourceSalesOrder finds the purchase orders generated from a
	// sales order, open ones first
	FindBySourceSalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) ([]PurchaseOrder, error)

	// FindAllForTenant finds all purchase orders for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking on the version column
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// GenerateOrderNumber produces the next sequential PO number for a tenant
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// DeleteForTenant deletes a purchase order for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PurchasingRepositories bundles the repositories a purchasing transaction
// operates on
type PurchasingRepositories struct {
	SalesOrders    SalesOrderRepository
	PurchaseOrders PurchaseOrderRepository
}

// UnitOfWork runs a function against transaction-scoped repositories.
// Either every write inside fn commits or none do; a non-nil error from fn
// rolls back all of them.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos PurchasingRepositories) error) error
}
