package trade

import (
	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// PurchaseRequirement is derived demand for a quantity of a product from a
// specific vendor, computed from outstanding sales order demand. It exists
// only in memory as part of a plan; it is never persisted.
type PurchaseRequirement struct {
	SalesOrderLineID uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductCode      string
	Unit             string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal // Vendor-specific cost from the mapping
	VendorPartCode   string
	LeadTimeDays     int
}

// UnassignedRequirement is demand that could not be assigned to any vendor
// and needs manual resolution before it can be purchased
type UnassignedRequirement struct {
	SalesOrderLineID uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	Quantity         decimal.Decimal
	Reason           string
}

// VendorRequirements groups the requirements assigned to one vendor
type VendorRequirements struct {
	SupplierID   uuid.UUID
	Requirements []PurchaseRequirement
}

// TotalQuantity returns the total quantity demanded from this vendor
func (v *VendorRequirements) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, r := range v.Requirements {
		total = total.Add(r.Quantity)
	}
	return total
}

// LineSnapshot captures a sales order line's quantities at analysis time.
// The generator compares snapshots against the current line state to detect
// concurrent modification between analyze and generate.
type LineSnapshot struct {
	QuantityOrdered         decimal.Decimal
	QuantityReserved        decimal.Decimal
	QuantityOnPurchaseOrder decimal.Decimal
}

// PurchaseRequirementsPlan is the vendor-grouped purchase plan for one
// sales order. Vendors appear in deterministic order: the order in which
// lines first demanded them, with lines walked in order and each line's
// vendors walked by ascending mapping priority.
type PurchaseRequirementsPlan struct {
	SalesOrderID      uuid.UUID
	OrderNumber       string
	TenantID          uuid.UUID
	SalesOrderVersion int
	Vendors           []VendorRequirements
	Unassigned        []UnassignedRequirement
	LineSnapshots     map[uuid.UUID]LineSnapshot
}

// IsEmpty returns true when the plan holds no demand at all
func (p *PurchaseRequirementsPlan) IsEmpty() bool {
	return len(p.Vendors) == 0 && len(p.Unassigned) == 0
}

// HasUnassigned returns true when some demand has no vendor
func (p *PurchaseRequirementsPlan) HasUnassigned() bool {
	return len(p.Unassigned) > 0
}

// VendorCount returns the number of distinct vendors in the plan
func (p *PurchaseRequirementsPlan) VendorCount() int {
	return len(p.Vendors)
}

// QuantityForLine returns the total planned quantity (assigned plus
// unassigned) for a sales order line
func (p *PurchaseRequirementsPlan) QuantityForLine(lineID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, v := range p.Vendors {
		for _, r := range v.Requirements {
			if r.SalesOrderLineID == lineID {
				total = total.Add(r.Quantity)
			}
		}
	}
	for _, u := range p.Unassigned {
		if u.SalesOrderLineID == lineID {
			total = total.Add(u.Quantity)
		}
	}
	return total
}

// vendorRequirements returns the bucket for a vendor, appending a new one
// on first demand so plan order stays stable
func (p *PurchaseRequirementsPlan) vendorRequirements(supplierID uuid.UUID) *VendorRequirements {
	for idx := range p.Vendors {
		if p.Vendors[idx].SupplierID == supplierID {
			return &p.Vendors[idx]
		}
	}
	p.Vendors = append(p.Vendors, VendorRequirements{SupplierID: supplierID})
	return &p.Vendors[len(p.Vendors)-1]
}

// ProductCatalog resolves products for the lines under analysis.
// Implementations return only active, non-deleted products with their
// vendor mappings preloaded.
type ProductCatalog interface {
	ProductByID(id uuid.UUID) *catalog.Product
}

// ProductMap is a ProductCatalog backed by a map
type ProductMap map[uuid.UUID]*catalog.Product

// ProductByID implements ProductCatalog
func (m ProductMap) ProductByID(id uuid.UUID) *catalog.Product {
	return m[id]
}

// PurchaseRequirementsAnalyzer derives a vendor-grouped purchase plan from
// a sales order's outstanding demand. Analysis is a pure computation: it
// reads the order and catalog, mutates nothing, and is deterministic for
// identical input.
type PurchaseRequirementsAnalyzer struct {
	defaultLeadTimeDays int
}

// NewPurchaseRequirementsAnalyzer creates a new analyzer
func NewPurchaseRequirementsAnalyzer() *PurchaseRequirementsAnalyzer {
	return &PurchaseRequirementsAnalyzer{defaultLeadTimeDays: catalog.DefaultLeadTimeDays}
}

// NewPurchaseRequirementsAnalyzerWithLeadTime overrides the fallback lead
// time applied to vendor mappings that do not carry their own.
func NewPurchaseRequirementsAnalyzerWithLeadTime(days int) *PurchaseRequirementsAnalyzer {
	a := NewPurchaseRequirementsAnalyzer()
	if days > 0 {
		a.defaultLeadTimeDays = days
	}
	return a
}

func (a *PurchaseRequirementsAnalyzer) effectiveLeadTime(mapping *catalog.VendorProductMapping) int {
	if mapping.LeadTimeDays > 0 {
		return mapping.LeadTimeDays
	}
	return a.defaultLeadTimeDays
}

// Analyze inspects each product-bearing line and assigns the quantity still
// needing purchase to vendors by ascending mapping priority. Each vendor
// absorbs demand up to its capacity cap; residual demand lands in the
// unassigned bucket rather than being dropped. Demand already covered by
// reservations or open purchase orders is excluded, which makes repeated
// analyze/generate cycles re-run safe.
func (a *PurchaseRequirementsAnalyzer) Analyze(order *SalesOrder, products ProductCatalog) (*PurchaseRequirementsPlan, error) {
	if !order.IsPurchasable() {
		return nil, &InvalidOrderStateError{OrderID: order.ID, Status: order.Status}
	}

	productLines := order.ProductItems()
	if len(productLines) == 0 {
		return nil, &EmptyOrderError{OrderID: order.ID}
	}

	plan := &PurchaseRequirementsPlan{
		SalesOrderID:      order.ID,
		OrderNumber:       order.OrderNumber,
		TenantID:          order.TenantID,
		SalesOrderVersion: order.GetVersion(),
		Vendors:           make([]VendorRequirements, 0),
		Unassigned:        make([]UnassignedRequirement, 0),
		LineSnapshots:     make(map[uuid.UUID]LineSnapshot, len(productLines)),
	}

	for _, line := range productLines {
		plan.LineSnapshots[line.ID] = LineSnapshot{
			QuantityOrdered:         line.QuantityOrdered,
			QuantityReserved:        line.QuantityReserved,
			QuantityOnPurchaseOrder: line.QuantityOnPurchaseOrder,
		}

		product := products.ProductByID(*line.ProductID)
		if product == nil || !product.IsPurchased {
			continue
		}

		needed := line.OutstandingPurchaseQuantity()
		if !needed.IsPositive() {
			continue
		}

		a.assignLine(plan, line, product, needed)
	}

	return plan, nil
}

// assignLine splits one line's demand across the product's vendors
func (a *PurchaseRequirementsAnalyzer) assignLine(plan *PurchaseRequirementsPlan, line *SalesOrderItem, product *catalog.Product, needed decimal.Decimal) {
	mappings := product.SourcingMappings()
	if len(mappings) == 0 {
		plan.Unassigned = append(plan.Unassigned, UnassignedRequirement{
			SalesOrderLineID: line.ID,
			ProductID:        product.ID,
			ProductName:      line.ProductName,
			Quantity:         needed,
			Reason:           "no vendor mapped for product",
		})
		return
	}

	remaining := needed
	for idx := range mappings {
		if !remaining.IsPositive() {
			break
		}
		mapping := &mappings[idx]

		take := mapping.Available(remaining)
		if !take.IsPositive() {
			continue
		}

		cost := mapping.Cost
		if cost.IsZero() {
			cost = product.StandardCost
		}

		bucket := plan.vendorRequirements(mapping.SupplierID)
		bucket.Requirements = append(bucket.Requirements, PurchaseRequirement{
			SalesOrderLineID: line.ID,
			ProductID:        product.ID,
			ProductName:      line.ProductName,
			ProductCode:      line.ProductCode,
			Unit:             line.Unit,
			Quantity:         take,
			UnitCost:         cost,
			VendorPartCode:   mapping.VendorPartCode,
			LeadTimeDays:     a.effectiveLeadTime(mapping),
		})

		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		plan.Unassigned = append(plan.Unassigned, UnassignedRequirement{
			SalesOrderLineID: line.ID,
			ProductID:        product.ID,
			ProductName:      line.ProductName,
			Quantity:         remaining,
			Reason:           "vendor capacity exhausted",
		})
	}
}
