package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Planning DTOs ====================

// GeneratePurchaseOrdersRequest represents a request to generate purchase
// orders from a sales order's outstanding requirements
type GeneratePurchaseOrdersRequest struct {
	CreatedBy    *uuid.UUID `json:"created_by"`
	AllowPartial bool       `json:"allow_partial"` // Proceed even when some demand has no vendor
}

// RequirementResponse represents one planned requirement entry
type RequirementResponse struct {
	SalesOrderLineID uuid.UUID       `json:"sales_order_line_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductCode      string          `json:"product_code,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	VendorPartCode   string          `json:"vendor_part_code,omitempty"`
	LeadTimeDays     int             `json:"lead_time_days"`
}

// VendorPlanResponse groups planned requirements for one vendor
type VendorPlanResponse struct {
	SupplierID    uuid.UUID             `json:"supplier_id"`
	SupplierName  string                `json:"supplier_name"`
	TotalQuantity decimal.Decimal       `json:"total_quantity"`
	Requirements  []RequirementResponse `json:"requirements"`
}

// UnassignedRequirementResponse represents demand with no vendor
type UnassignedRequirementResponse struct {
	SalesOrderLineID uuid.UUID       `json:"sales_order_line_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	Reason           string          `json:"reason"`
}

// PurchaseRequirementsPlanResponse is the analyzer output for one sales order
type PurchaseRequirementsPlanResponse struct {
	SalesOrderID uuid.UUID                       `json:"sales_order_id"`
	OrderNumber  string                          `json:"order_number"`
	Vendors      []VendorPlanResponse            `json:"vendors"`
	Unassigned   []UnassignedRequirementResponse `json:"unassigned"`
}

// HasUnassigned reports whether the plan carries demand with no vendor
func (r *PurchaseRequirementsPlanResponse) HasUnassigned() bool {
	return len(r.Unassigned) > 0
}

// PurchaseOrderRefResponse references a generated purchase order
type PurchaseOrderRefResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	ItemCount    int             `json:"item_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	DatePromised time.Time       `json:"date_promised"`
}

// PurchaseStatusSummaryResponse summarizes purchasing progress for a sales order
type PurchaseStatusSummaryResponse struct {
	SalesOrderID          uuid.UUID             `json:"sales_order_id"`
	OrderNumber           string                `json:"order_number"`
	OrderStatus           trade.OrderStatus     `json:"order_status"`
	PurchaseStatus        trade.PurchaseStatus  `json:"purchase_status"`
	TotalLines            int                   `json:"total_lines"`
	LinesNeedingPurchase  int                   `json:"lines_needing_purchase"`
	TotalQuantityOrdered  decimal.Decimal       `json:"total_quantity_ordered"`
	TotalQuantityOnPO     decimal.Decimal       `json:"total_quantity_on_purchase_order"`
	TotalQuantityReceived decimal.Decimal       `json:"total_quantity_received"`
	PurchaseOrdersCreated int                   `json:"purchase_orders_created"`
}

// BulkAnalyzeEntryResponse is the per-order result of a bulk analysis
type BulkAnalyzeEntryResponse struct {
	SalesOrderID   uuid.UUID                         `json:"sales_order_id"`
	OrderNumber    string                            `json:"order_number"`
	Plan           *PurchaseRequirementsPlanResponse `json:"plan,omitempty"`
	NeedsAttention bool                              `json:"needs_attention"` // Unassigned demand present
	Error          string                            `json:"error,omitempty"`
}

// ReceivePurchaseOrderRequest represents a goods receipt posting
type ReceivePurchaseOrderRequest struct {
	Items []ReceiveItemInput `json:"items" binding:"required,min=1,dive"`
}

// ReceiveItemInput is one received line
type ReceiveItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// CancelPurchaseOrderRequest represents a purchase order cancellation
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ToPlanResponse converts a domain plan, resolving supplier names
func ToPlanResponse(plan *trade.PurchaseRequirementsPlan, supplierNames map[uuid.UUID]string) *PurchaseRequirementsPlanResponse {
	vendors := make([]VendorPlanResponse, 0, len(plan.Vendors))
	for _, v := range plan.Vendors {
		reqs := make([]RequirementResponse, 0, len(v.Requirements))
		for _, r := range v.Requirements {
			reqs = append(reqs, RequirementResponse{
				SalesOrderLineID: r.SalesOrderLineID,
				ProductID:        r.ProductID,
				ProductName:      r.ProductName,
				ProductCode:      r.ProductCode,
				Quantity:         r.Quantity,
				UnitCost:         r.UnitCost,
				VendorPartCode:   r.VendorPartCode,
				LeadTimeDays:     r.LeadTimeDays,
			})
		}
		vendors = append(vendors, VendorPlanResponse{
			SupplierID:    v.SupplierID,
			SupplierName:  supplierNames[v.SupplierID],
			TotalQuantity: v.TotalQuantity(),
			Requirements:  reqs,
		})
	}

	unassigned := make([]UnassignedRequirementResponse, 0, len(plan.Unassigned))
	for _, u := range plan.Unassigned {
		unassigned = append(unassigned, UnassignedRequirementResponse{
			SalesOrderLineID: u.SalesOrderLineID,
			ProductID:        u.ProductID,
			ProductName:      u.ProductName,
			Quantity:         u.Quantity,
			Reason:           u.Reason,
		})
	}

	return &PurchaseRequirementsPlanResponse{
		SalesOrderID: plan.SalesOrderID,
		OrderNumber:  plan.OrderNumber,
		Vendors:      vendors,
		Unassigned:   unassigned,
	}
}

// ToPurchaseOrderRefResponse converts a generated purchase order
func ToPurchaseOrderRefResponse(order *trade.PurchaseOrder) PurchaseOrderRefResponse {
	return PurchaseOrderRefResponse{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		SupplierID:   order.SupplierID,
		SupplierName: order.SupplierName,
		ItemCount:    order.ItemCount(),
		TotalAmount:  order.TotalAmount,
		DatePromised: order.DatePromised,
	}
}
