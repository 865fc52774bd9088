package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
	SupplierStatusBlocked  SupplierStatus = "blocked" // Blocked due to quality/payment issues
)

// SupplierType represents the type of supplier
type SupplierType string

const (
	SupplierTypeManufacturer SupplierType = "manufacturer"
	SupplierTypeDistributor  SupplierType = "distributor"
	SupplierTypeService      SupplierType = "service"
)

// Supplier represents a vendor business partner.
// It is the aggregate root for supplier-related operations.
type Supplier struct {
	shared.TenantAggregateRoot
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_tenant_code,priority:2"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Type        SupplierType    `gorm:"type:varchar(20);not null;default:'distributor'"`
	Status      SupplierStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string          `gorm:"type:varchar(100)"`
	Phone       string          `gorm:"type:varchar(50);index"`
	Email       string          `gorm:"type:varchar(200);index"`
	Address     string          `gorm:"type:text"`
	Country     string          `gorm:"type:varchar(100)"`
	TaxID       string          `gorm:"type:varchar(50)"`
	CreditDays  int             `gorm:"not null;default:0"`                    // Payment terms: days until payment due
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Maximum credit allowed
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(tenantID uuid.UUID, code, name string, supplierType SupplierType) (*Supplier, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	switch supplierType {
	case SupplierTypeManufacturer, SupplierTypeDistributor, SupplierTypeService:
	default:
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown supplier type")
	}

	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Type:                supplierType,
		Status:              SupplierStatusActive,
		CreditDays:          0,
		CreditLimit:         decimal.Zero,
	}, nil
}

// IsActive returns true if the supplier can receive new purchase orders
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// Deactivate marks the supplier as inactive
func (s *Supplier) Deactivate() {
	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Activate marks the supplier as active
func (s *Supplier) Activate() {
	s.Status = SupplierStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Block marks the supplier as blocked
func (s *Supplier) Block() {
	s.Status = SupplierStatusBlocked
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetPaymentTerms updates credit days and limit
func (s *Supplier) SetPaymentTerms(creditDays int, creditLimit decimal.Decimal) error {
	if creditDays < 0 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days cannot be negative")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	s.CreditDays = creditDays
	s.CreditLimit = creditLimit
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}
