package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/modernerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed       PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusPartialReceived PurchaseOrderStatus = "PARTIAL_RECEIVED"
	PurchaseOrderStatusCompleted       PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusConfirmed, PurchaseOrderStatusPartialReceived,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusPartialReceived || target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartialReceived:
		return target == PurchaseOrderStatusPartialReceived || target == PurchaseOrderStatusCompleted
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusConfirmed || s == PurchaseOrderStatusPartialReceived
}

// IsOpen returns true for statuses whose quantities count toward demand
// coverage. Cancelled orders release their quantity back to the sales line.
func (s PurchaseOrderStatus) IsOpen() bool {
	return s != PurchaseOrderStatusCancelled
}

// PurchaseOrderItem represents a line item in a purchase order.
// Generated lines carry a back-reference to the sales order line they
// cover; the link is used for traceability and double-generation
// prevention, never for ownership.
type PurchaseOrderItem struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID              uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName            string          `gorm:"type:varchar(200);not null"`
	ProductCode            string          `gorm:"type:varchar(50)"`
	VendorPartCode         string          `gorm:"type:varchar(100)"`
	QuantityOrdered        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost               decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Vendor-specific cost, not list price
	Amount                 decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit                   string          `gorm:"type:varchar(20)"`
	SourceSalesOrderID     *uuid.UUID      `gorm:"type:uuid;index"`
	SourceSalesOrderLineID *uuid.UUID      `gorm:"type:uuid;index"`
	Remark                 string          `gorm:"type:varchar(500)"`
	CreatedAt              time.Time       `gorm:"not null"`
	UpdatedAt              time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitCost valueobject.Money) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ProductID:        productID,
		ProductName:      productName,
		ProductCode:      productCode,
		Unit:             unit,
		QuantityOrdered:  quantity,
		QuantityReceived: decimal.Zero,
		UnitCost:         unitCost.Amount(),
		Amount:           quantity.Mul(unitCost.Amount()),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// LinkSourceSalesOrderLine records which sales order line this item covers
func (i *PurchaseOrderItem) LinkSourceSalesOrderLine(salesOrderID, salesOrderLineID uuid.UUID) {
	i.SourceSalesOrderID = &salesOrderID
	i.SourceSalesOrderLineID = &salesOrderLineID
	i.UpdatedAt = time.Now()
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	remaining := i.QuantityOrdered.Sub(i.QuantityReceived)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived.GreaterThanOrEqual(i.QuantityOrdered)
}

// AddReceivedQuantity adds to the received quantity
func (i *PurchaseOrderItem) AddReceivedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}

	newReceived := i.QuantityReceived.Add(quantity)
	if newReceived.GreaterThan(i.QuantityOrdered) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", fmt.Sprintf("Cannot receive %s, only %s remaining", quantity.String(), i.RemainingQuantity().String()))
	}

	i.QuantityReceived = newReceived
	i.UpdatedAt = time.Now()

	return nil
}

// ReceiveItem represents a single item being received
type ReceiveItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ReceivedItemInfo describes a processed receipt line
type ReceivedItemInfo struct {
	ItemID                 uuid.UUID       `json:"item_id"`
	ProductID              uuid.UUID       `json:"product_id"`
	ProductName            string          `json:"product_name"`
	Quantity               decimal.Decimal `json:"quantity"`
	UnitCost               decimal.Decimal `json:"unit_cost"`
	SourceSalesOrderLineID *uuid.UUID      `json:"source_sales_order_line_id,omitempty"`
}

// PurchaseOrder represents a purchase order aggregate root.
// All items on a purchase order belong to a single vendor; generated
// orders additionally reference the sales order they were derived from.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber        string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	SupplierID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName       string              `gorm:"type:varchar(200);not null"`
	SourceSalesOrderID *uuid.UUID          `gorm:"type:uuid;index"` // Set when generated from a sales order
	Items              []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status             PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	DateOrdered        time.Time           `gorm:"not null"`
	DatePromised       time.Time           `gorm:"not null"`
	Remark             string              `gorm:"type:text"`
	ConfirmedAt        *time.Time          `gorm:"index"`
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, supplierID uuid.UUID, supplierName string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}

	now := time.Now()
	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		Items:               make([]PurchaseOrderItem, 0),
		TotalAmount:         decimal.Zero,
		Status:              PurchaseOrderStatusDraft,
		DateOrdered:         now,
		DatePromised:        now.AddDate(0, 0, 7),
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// LinkSourceSalesOrder records the sales order this PO was generated from
func (o *PurchaseOrder) LinkSourceSalesOrder(salesOrderID uuid.UUID) {
	o.SourceSalesOrderID = &salesOrderID
	o.UpdatedAt = time.Now()
}

// SetDatePromised sets the expected delivery date
func (o *PurchaseOrder) SetDatePromised(date time.Time) error {
	if date.Before(o.DateOrdered) {
		return shared.NewDomainError("INVALID_DATE", "Promised date cannot precede order date")
	}
	o.DatePromised = date
	o.UpdatedAt = time.Now()
	return nil
}

// AddItem adds a new item to the order
// Only allowed in DRAFT status; one line per product
func (o *PurchaseOrder) AddItem(productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitCost valueobject.Money) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, productID, productName, productCode, unit, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return &o.Items[len(o.Items)-1], nil
}

// AddGeneratedItem adds a line derived from a purchase requirement,
// linked back to its source sales order line. Unlike AddItem, the same
// product may appear on several lines as long as each covers a different
// source line: one PO line per (sales order line, vendor) pairing.
func (o *PurchaseOrder) AddGeneratedItem(req PurchaseRequirement, sourceSalesOrderID uuid.UUID) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	for _, item := range o.Items {
		if item.SourceSalesOrderLineID != nil && *item.SourceSalesOrderLineID == req.SalesOrderLineID && item.ProductID == req.ProductID {
			return nil, shared.NewDomainError("DUPLICATE_SOURCE_LINE", "Sales order line already covered on this order")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, req.ProductID, req.ProductName, req.ProductCode, req.Unit, req.Quantity, valueobject.NewMoneyUSD(req.UnitCost))
	if err != nil {
		return nil, err
	}
	item.VendorPartCode = req.VendorPartCode
	item.LinkSourceSalesOrderLine(sourceSalesOrderID, req.SalesOrderLineID)

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return &o.Items[len(o.Items)-1], nil
}

// Confirm confirms the order, transitioning from DRAFT to CONFIRMED
func (o *PurchaseOrder) Confirm() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o))

	return nil
}

// Receive processes receipt of goods for one or more items
// Only allowed in CONFIRMED or PARTIAL_RECEIVED status
func (o *PurchaseOrder) Receive(receiveItems []ReceiveItem) ([]ReceivedItemInfo, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive goods for order in %s status", o.Status))
	}
	if len(receiveItems) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Receive items cannot be empty")
	}

	receivedInfos := make([]ReceivedItemInfo, 0, len(receiveItems))

	for _, ri := range receiveItems {
		if ri.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Receive quantity for product %s must be positive", ri.ProductID))
		}

		lines := o.ItemsForProduct(ri.ProductID)
		if len(lines) == 0 {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Product %s not found in order", ri.ProductID))
		}

		available := decimal.Zero
		for _, line := range lines {
			available = available.Add(line.RemainingQuantity())
		}
		if ri.Quantity.GreaterThan(available) {
			return nil, shared.NewDomainError("QUANTITY_EXCEEDED", fmt.Sprintf("Cannot receive %s, only %s remaining", ri.Quantity.String(), available.String()))
		}

		// A generated order may carry several lines of the same product,
		// one per source sales order line. Fill them in line order so
		// each source back-link is credited with its own share.
		remaining := ri.Quantity
		for _, line := range lines {
			if remaining.IsZero() {
				break
			}
			take := decimal.Min(remaining, line.RemainingQuantity())
			if take.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if err := line.AddReceivedQuantity(take); err != nil {
				return nil, err
			}

			receivedInfos = append(receivedInfos, ReceivedItemInfo{
				ItemID:                 line.ID,
				ProductID:              ri.ProductID,
				ProductName:            line.ProductName,
				Quantity:               take,
				UnitCost:               line.UnitCost,
				SourceSalesOrderLineID: line.SourceSalesOrderLineID,
			})

			remaining = remaining.Sub(take)
		}
	}

	if o.isAllItemsReceived() {
		o.Status = PurchaseOrderStatusCompleted
		now := time.Now()
		o.CompletedAt = &now
	} else {
		o.Status = PurchaseOrderStatusPartialReceived
	}

	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, receivedInfos))

	return receivedInfos, nil
}

// Cancel cancels the order
// Allowed only before any goods have been received
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if o.hasReceivedAnyGoods() {
		return shared.NewDomainError("ALREADY_RECEIVED", "Cannot cancel order after goods have been received")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))

	return nil
}

// recalculateTotal recalculates the order total
func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// isAllItemsReceived checks if all items have been fully received
func (o *PurchaseOrder) isAllItemsReceived() bool {
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return len(o.Items) > 0
}

// hasReceivedAnyGoods checks if any goods have been received
func (o *PurchaseOrder) hasReceivedAnyGoods() bool {
	for _, item := range o.Items {
		if item.QuantityReceived.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// TotalOrderedQuantity returns the total ordered quantity
func (o *PurchaseOrder) TotalOrderedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.QuantityOrdered)
	}
	return total
}

// ItemsForProduct returns the order lines carrying a product, in line
// order. Generated orders may hold several lines of the same product,
// one per source sales order line.
func (o *PurchaseOrder) ItemsForProduct(productID uuid.UUID) []*PurchaseOrderItem {
	items := make([]*PurchaseOrderItem, 0, 1)
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			items = append(items, &o.Items[idx])
		}
	}
	return items
}

// ItemCount returns the number of items in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// IsCancelled returns true if order is cancelled
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == PurchaseOrderStatusCancelled
}
