package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// Implementations must preload vendor mappings on every read so the
// sourcing logic always sees the full mapping set.
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDsForTenant finds multiple products by ID for a specific tenant
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// FindByCode finds a product by code for a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// FindAllForTenant finds all products for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product together with its vendor mappings
	Save(ctx context.Context, product *Product) error

	// DeleteForTenant deletes a product for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
