package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/modernerp/backend/internal/domain/shared/valueobject"
	"github.com/modernerp/backend/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PurchaseStatus summarizes how far purchasing has progressed for an order
type PurchaseStatus string

const (
	PurchaseStatusNotRequired PurchaseStatus = "not_required" // No line needs purchasing
	PurchaseStatusRequired    PurchaseStatus = "required"     // Demand exists, nothing on PO yet
	PurchaseStatusPartial     PurchaseStatus = "partial"      // Some demand covered by POs
	PurchaseStatusOrdered     PurchaseStatus = "ordered"      // All demand on POs, not yet received
	PurchaseStatusReceived    PurchaseStatus = "received"     // All purchased quantity received
)

// SalesOrderItem represents a line item in a sales order.
// ProductID is nil for charge-only lines (freight, fees); those lines are
// never considered for purchasing.
type SalesOrderItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index"`
	ProductName string     `gorm:"type:varchar(200);not null"`
	ProductCode string     `gorm:"type:varchar(50)"`
	Unit        string     `gorm:"type:varchar(20)"`
	// Quantity lifecycle: ordered -> reserved -> on purchase order -> received
	QuantityOrdered         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReserved        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Covered from stock
	QuantityOnPurchaseOrder decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Placed on open POs
	QuantityReceived        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Received via linked POs
	UnitPrice               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount                  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remark                  string          `gorm:"type:varchar(500)"`
	CreatedAt               time.Time       `gorm:"not null"`
	UpdatedAt               time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// NewSalesOrderItem creates a new product-bearing sales order line
func NewSalesOrderItem(orderID, productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitPrice valueobject.Money) (*SalesOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	pid := productID
	return &SalesOrderItem{
		ID:                      uuid.New(),
		OrderID:                 orderID,
		ProductID:               &pid,
		ProductName:             productName,
		ProductCode:             productCode,
		Unit:                    unit,
		QuantityOrdered:         quantity,
		QuantityReserved:        decimal.Zero,
		QuantityOnPurchaseOrder: decimal.Zero,
		QuantityReceived:        decimal.Zero,
		UnitPrice:               unitPrice.Amount(),
		Amount:                  quantity.Mul(unitPrice.Amount()),
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}

// NewChargeItem creates a charge-only line (no product, never purchased)
func NewChargeItem(orderID uuid.UUID, description string, amount valueobject.Money) (*SalesOrderItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Charge description cannot be empty")
	}
	if amount.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Charge amount cannot be negative")
	}

	now := time.Now()
	return &SalesOrderItem{
		ID:                      uuid.New(),
		OrderID:                 orderID,
		ProductName:             description,
		QuantityOrdered:         decimal.NewFromInt(1),
		QuantityReserved:        decimal.Zero,
		QuantityOnPurchaseOrder: decimal.Zero,
		QuantityReceived:        decimal.Zero,
		UnitPrice:               amount.Amount(),
		Amount:                  amount.Amount(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}

// HasProduct returns true for product-bearing lines
func (i *SalesOrderItem) HasProduct() bool {
	return i.ProductID != nil && *i.ProductID != uuid.Nil
}

// OutstandingPurchaseQuantity returns the quantity still needing purchase:
// ordered minus reserved stock minus quantity already on open purchase
// orders, floored at zero. Recomputed at analysis time, never read from a
// stored derived field.
func (i *SalesOrderItem) OutstandingPurchaseQuantity() decimal.Decimal {
	needed := i.QuantityOrdered.Sub(i.QuantityReserved).Sub(i.QuantityOnPurchaseOrder)
	if needed.IsNegative() {
		return decimal.Zero
	}
	return needed
}

// Reserve marks part of the ordered quantity as covered from stock
func (i *SalesOrderItem) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	newReserved := i.QuantityReserved.Add(quantity)
	if newReserved.GreaterThan(i.QuantityOrdered) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", "Cannot reserve more than ordered")
	}
	i.QuantityReserved = newReserved
	i.UpdatedAt = time.Now()
	return nil
}

// RecordPurchasedQuantity increases the quantity placed on purchase orders.
// The total on purchase orders can never exceed the ordered quantity.
func (i *SalesOrderItem) RecordPurchasedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Purchased quantity must be positive")
	}
	newOnPO := i.QuantityOnPurchaseOrder.Add(quantity)
	if newOnPO.GreaterThan(i.QuantityOrdered) {
		return shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Purchasing %s would exceed ordered quantity %s", quantity.String(), i.QuantityOrdered.String()))
	}
	i.QuantityOnPurchaseOrder = newOnPO
	i.UpdatedAt = time.Now()
	return nil
}

// ReleasePurchasedQuantity decreases the on-PO quantity when a linked
// purchase order line is cancelled
func (i *SalesOrderItem) ReleasePurchasedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Released quantity must be positive")
	}
	newOnPO := i.QuantityOnPurchaseOrder.Sub(quantity)
	if newOnPO.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than placed on purchase orders")
	}
	i.QuantityOnPurchaseOrder = newOnPO
	i.UpdatedAt = time.Now()
	return nil
}

// AddReceivedQuantity records receipt of purchased goods against this line
func (i *SalesOrderItem) AddReceivedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	newReceived := i.QuantityReceived.Add(quantity)
	if newReceived.GreaterThan(i.QuantityOnPurchaseOrder) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", "Cannot receive more than placed on purchase orders")
	}
	i.QuantityReceived = newReceived
	i.UpdatedAt = time.Now()
	return nil
}

// SalesOrder represents a customer order aggregate root
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber  string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_order_tenant_number,priority:2"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName string           `gorm:"type:varchar(200);not null"`
	Items        []SalesOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Status       OrderStatus      `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Remark       string           `gorm:"type:text"`
	ConfirmedAt  *time.Time       `gorm:"index"`
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new sales order
func NewSalesOrder(tenantID uuid.UUID, orderNumber string, customerID uuid.UUID, customerName string) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	order := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Items:               make([]SalesOrderItem, 0),
		TotalAmount:         decimal.Zero,
		Status:              OrderStatusDraft,
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a product line to the order
// Only allowed in DRAFT status
func (o *SalesOrder) AddItem(productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitPrice valueobject.Money) (*SalesOrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewSalesOrderItem(o.ID, productID, productName, productCode, unit, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return &o.Items[len(o.Items)-1], nil
}

// AddCharge adds a charge-only line (freight, fees) to the order
// Only allowed in DRAFT status
func (o *SalesOrder) AddCharge(description string, amount valueobject.Money) (*SalesOrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewChargeItem(o.ID, description, amount)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem removes a line from the order
// Only allowed in DRAFT status
func (o *SalesOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Confirm confirms the order, transitioning from DRAFT to CONFIRMED
func (o *SalesOrder) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewSalesOrderConfirmedEvent(o))

	return nil
}

// Ship marks the order as shipped
func (o *SalesOrder) Ship() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}
	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Complete marks the order as completed
func (o *SalesOrder) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Cancel cancels the order
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewSalesOrderCancelledEvent(o))

	return nil
}

// GetItem returns an item by its ID
func (o *SalesOrder) GetItem(itemID uuid.UUID) *SalesOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ProductItems returns the product-bearing lines, excluding charges
func (o *SalesOrder) ProductItems() []*SalesOrderItem {
	items := make([]*SalesOrderItem, 0, len(o.Items))
	for idx := range o.Items {
		if o.Items[idx].HasProduct() {
			items = append(items, &o.Items[idx])
		}
	}
	return items
}

// PurchaseStatus derives the purchasing progress across all product lines
func (o *SalesOrder) PurchaseStatus() PurchaseStatus {
	totalNeeded := decimal.Zero
	totalOnPO := decimal.Zero
	totalReceived := decimal.Zero
	anyDemand := false

	for idx := range o.Items {
		item := &o.Items[idx]
		if !item.HasProduct() {
			continue
		}
		demand := item.QuantityOrdered.Sub(item.QuantityReserved)
		if demand.IsPositive() {
			anyDemand = true
		}
		totalNeeded = totalNeeded.Add(item.OutstandingPurchaseQuantity())
		totalOnPO = totalOnPO.Add(item.QuantityOnPurchaseOrder)
		totalReceived = totalReceived.Add(item.QuantityReceived)
	}

	switch {
	case !anyDemand:
		return PurchaseStatusNotRequired
	case totalOnPO.IsZero():
		return PurchaseStatusRequired
	case totalNeeded.IsPositive():
		return PurchaseStatusPartial
	case totalReceived.GreaterThanOrEqual(totalOnPO):
		return PurchaseStatusReceived
	default:
		return PurchaseStatusOrdered
	}
}

// recalculateTotal recalculates the order total
func (o *SalesOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// IsDraft returns true if order is in draft status
func (o *SalesOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsCancelled returns true if order is cancelled
func (o *SalesOrder) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// WorkflowDocumentType implements workflow.Workflowable
func (o *SalesOrder) WorkflowDocumentType() workflow.DocumentType {
	return workflow.DocumentTypeSalesOrder
}

// WorkflowDocumentID implements workflow.Workflowable
func (o *SalesOrder) WorkflowDocumentID() uuid.UUID {
	return o.ID
}

// WorkflowState implements workflow.Workflowable
func (o *SalesOrder) WorkflowState() workflow.State {
	switch o.Status {
	case OrderStatusDraft:
		return workflow.StateDrafted
	case OrderStatusConfirmed, OrderStatusShipped:
		return workflow.StateInProgress
	case OrderStatusCompleted:
		return workflow.StateComplete
	case OrderStatusCancelled:
		return workflow.StateVoided
	}
	return workflow.StateDrafted
}

// IsPurchasable reports whether purchase orders may be generated from this order
func (o *SalesOrder) IsPurchasable() bool {
	return workflow.IsPurchasable(o)
}
