package catalog

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultLeadTimeDays is used when a mapping does not specify a lead time
const DefaultLeadTimeDays = 7

// VendorProductMapping associates a product with a vendor able to supply it,
// with the vendor-specific cost, part code and capacity used when sourcing
// purchase requirements. At most one mapping exists per (product, vendor).
type VendorProductMapping struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key"`
	ProductID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_mapping_product_supplier,priority:1"`
	SupplierID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_mapping_product_supplier,priority:2"`
	VendorPartCode  string           `gorm:"type:varchar(100)"`
	Cost            decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // Vendor-specific unit cost
	LeadTimeDays    int              `gorm:"not null;default:0"`          // 0 means unknown, DefaultLeadTimeDays applies
	Priority        int              `gorm:"not null;default:1"`          // 1 is the primary vendor
	MaxAvailableQty *decimal.Decimal `gorm:"type:decimal(18,4)"`          // Capacity cap per order, nil = unlimited
	IsActive        bool             `gorm:"not null;default:true"`
	CreatedAt       time.Time        `gorm:"not null"`
	UpdatedAt       time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VendorProductMapping) TableName() string {
	return "vendor_product_mappings"
}

// NewVendorProductMapping creates a new vendor mapping
func NewVendorProductMapping(supplierID uuid.UUID, vendorPartCode string, cost decimal.Decimal, priority int) (*VendorProductMapping, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Vendor cost cannot be negative")
	}
	if priority < 1 {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Priority must be at least 1")
	}

	now := time.Now()
	return &VendorProductMapping{
		ID:             uuid.New(),
		SupplierID:     supplierID,
		VendorPartCode: vendorPartCode,
		Cost:           cost,
		Priority:       priority,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// SetCapacity caps the quantity this vendor can supply per order
func (m *VendorProductMapping) SetCapacity(maxAvailable decimal.Decimal) error {
	if maxAvailable.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity cap must be positive")
	}
	m.MaxAvailableQty = &maxAvailable
	m.UpdatedAt = time.Now()
	return nil
}

// ClearCapacity removes the capacity cap
func (m *VendorProductMapping) ClearCapacity() {
	m.MaxAvailableQty = nil
	m.UpdatedAt = time.Now()
}

// SetLeadTime sets the vendor lead time in days
func (m *VendorProductMapping) SetLeadTime(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Lead time cannot be negative")
	}
	m.LeadTimeDays = days
	m.UpdatedAt = time.Now()
	return nil
}

// EffectiveLeadTimeDays returns the lead time, falling back to the default
func (m *VendorProductMapping) EffectiveLeadTimeDays() int {
	if m.LeadTimeDays <= 0 {
		return DefaultLeadTimeDays
	}
	return m.LeadTimeDays
}

// Available returns how much of the requested quantity this vendor can
// absorb under its capacity cap
func (m *VendorProductMapping) Available(requested decimal.Decimal) decimal.Decimal {
	if m.MaxAvailableQty == nil || m.MaxAvailableQty.GreaterThanOrEqual(requested) {
		return requested
	}
	return *m.MaxAvailableQty
}

// sortMappings orders mappings by ascending priority, ties broken by
// supplier ID for deterministic sourcing
func sortMappings(mappings []VendorProductMapping) {
	sort.SliceStable(mappings, func(i, j int) bool {
		if mappings[i].Priority != mappings[j].Priority {
			return mappings[i].Priority < mappings[j].Priority
		}
		return mappings[i].SupplierID.String() < mappings[j].SupplierID.String()
	})
}
