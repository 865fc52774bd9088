package trade

import (
	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeSalesOrderCreated            = "SalesOrderCreated"
	EventTypeSalesOrderConfirmed          = "SalesOrderConfirmed"
	EventTypeSalesOrderCancelled          = "SalesOrderCancelled"
	EventTypePurchaseOrdersGenerated      = "PurchaseOrdersGenerated"
	EventTypeSalesOrderPurchaseQtyUpdated = "SalesOrderPurchaseQuantityUpdated"
)

// SalesOrderCreatedEvent is raised when a new sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(order *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
	}
}

// EventType returns the event type name
func (e *SalesOrderCreatedEvent) EventType() string {
	return EventTypeSalesOrderCreated
}

// SalesOrderConfirmedEvent is raised when a sales order is confirmed
type SalesOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSalesOrderConfirmedEvent creates a new SalesOrderConfirmedEvent
func NewSalesOrderConfirmedEvent(order *SalesOrder) *SalesOrderConfirmedEvent {
	return &SalesOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderConfirmed, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		TotalAmount:     order.TotalAmount,
	}
}

// EventType returns the event type name
func (e *SalesOrderConfirmedEvent) EventType() string {
	return EventTypeSalesOrderConfirmed
}

// SalesOrderCancelledEvent is raised when a sales order is cancelled
type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
}

// NewSalesOrderCancelledEvent creates a new SalesOrderCancelledEvent
func NewSalesOrderCancelledEvent(order *SalesOrder) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCancelled, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Reason:          order.CancelReason,
	}
}

// EventType returns the event type name
func (e *SalesOrderCancelledEvent) EventType() string {
	return EventTypeSalesOrderCancelled
}

// GeneratedPurchaseOrderInfo carries per-PO details for the generation event
type GeneratedPurchaseOrderInfo struct {
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	OrderNumber     string          `json:"order_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
}

// PurchaseOrdersGeneratedEvent is raised when purchase orders are generated
// from a sales order's outstanding requirements
type PurchaseOrdersGeneratedEvent struct {
	shared.BaseDomainEvent
	SalesOrderID   uuid.UUID                    `json:"sales_order_id"`
	OrderNumber    string                       `json:"order_number"`
	PurchaseOrders []GeneratedPurchaseOrderInfo `json:"purchase_orders"`
}

// NewPurchaseOrdersGeneratedEvent creates a new PurchaseOrdersGeneratedEvent
func NewPurchaseOrdersGeneratedEvent(order *SalesOrder, pos []GeneratedPurchaseOrderInfo) *PurchaseOrdersGeneratedEvent {
	return &PurchaseOrdersGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrdersGenerated, AggregateTypeSalesOrder, order.ID, order.TenantID),
		SalesOrderID:    order.ID,
		OrderNumber:     order.OrderNumber,
		PurchaseOrders:  pos,
	}
}

// EventType returns the event type name
func (e *PurchaseOrdersGeneratedEvent) EventType() string {
	return EventTypePurchaseOrdersGenerated
}
