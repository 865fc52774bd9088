package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a product/SKU in the catalog
// It is the aggregate root for product-related operations, including the
// vendor mappings that drive purchase requirement sourcing.
type Product struct {
	shared.TenantAggregateRoot
	Code           string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name           string                 `gorm:"type:varchar(200);not null"`
	Description    string                 `gorm:"type:text"`
	Unit           string                 `gorm:"type:varchar(20);not null"`             // Base unit (e.g., "pcs", "kg", "box")
	StandardCost   decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"` // Fallback cost when no vendor cost known
	ListPrice      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"` // Selling price
	IsPurchased    bool                   `gorm:"not null;default:true"`                 // False for services/charges never purchased
	Status         ProductStatus          `gorm:"type:varchar(20);not null;default:'active'"`
	Attributes     string                 `gorm:"type:jsonb"` // JSON storage for custom attributes
	VendorMappings []VendorProductMapping `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, code, name, unit string) (*Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		StandardCost:        decimal.Zero,
		ListPrice:           decimal.Zero,
		IsPurchased:         true,
		Status:              ProductStatusActive,
		Attributes:          "{}",
	}, nil
}

// SetPricing updates the standard cost and list price
func (p *Product) SetPricing(standardCost, listPrice decimal.Decimal) error {
	if standardCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Standard cost cannot be negative")
	}
	if listPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	p.StandardCost = standardCost
	p.ListPrice = listPrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// MarkNotPurchased flags the product as never requiring purchasing (services, charges)
func (p *Product) MarkNotPurchased() {
	p.IsPurchased = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsActive returns true if the product can be sold and purchased
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// AddVendorMapping attaches a vendor mapping to the product.
// At most one mapping per vendor is allowed.
func (p *Product) AddVendorMapping(mapping *VendorProductMapping) error {
	if mapping == nil {
		return shared.NewDomainError("INVALID_MAPPING", "Vendor mapping cannot be nil")
	}
	for _, m := range p.VendorMappings {
		if m.SupplierID == mapping.SupplierID {
			return shared.NewDomainError("DUPLICATE_VENDOR", "Product already has a mapping for this vendor")
		}
	}
	mapping.ProductID = p.ID
	p.VendorMappings = append(p.VendorMappings, *mapping)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// RemoveVendorMapping detaches the mapping for the given vendor
func (p *Product) RemoveVendorMapping(supplierID uuid.UUID) error {
	for idx, m := range p.VendorMappings {
		if m.SupplierID == supplierID {
			p.VendorMappings = append(p.VendorMappings[:idx], p.VendorMappings[idx+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("MAPPING_NOT_FOUND", "No mapping for this vendor")
}

// MappingForVendor returns the mapping for a vendor, or nil
func (p *Product) MappingForVendor(supplierID uuid.UUID) *VendorProductMapping {
	for idx := range p.VendorMappings {
		if p.VendorMappings[idx].SupplierID == supplierID {
			return &p.VendorMappings[idx]
		}
	}
	return nil
}

// PrimaryVendorMapping returns the highest-priority active mapping, or nil
// when the product has no vendor mapped
func (p *Product) PrimaryVendorMapping() *VendorProductMapping {
	mappings := p.SourcingMappings()
	if len(mappings) == 0 {
		return nil
	}
	return &mappings[0]
}

// SourcingMappings returns the active vendor mappings in sourcing order:
// ascending priority, ties broken by supplier ID so repeated runs walk
// vendors in the same order.
func (p *Product) SourcingMappings() []VendorProductMapping {
	mappings := make([]VendorProductMapping, 0, len(p.VendorMappings))
	for _, m := range p.VendorMappings {
		if m.IsActive {
			mappings = append(mappings, m)
		}
	}
	sortMappings(mappings)
	return mappings
}
