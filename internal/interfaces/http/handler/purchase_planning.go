package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/modernerp/backend/internal/application/trade"
	"github.com/shopspring/decimal"
)

// PurchasePlanningHandler handles purchase planning API endpoints
type PurchasePlanningHandler struct {
	BaseHandler
	planningService *tradeapp.PurchasePlanningService
}

// NewPurchasePlanningHandler creates a new PurchasePlanningHandler
func NewPurchasePlanningHandler(planningService *tradeapp.PurchasePlanningService) *PurchasePlanningHandler {
	return &PurchasePlanningHandler{
		planningService: planningService,
	}
}

// GeneratePurchaseOrdersRequest is the request body for generating purchase orders
type GeneratePurchaseOrdersRequest struct {
	AllowPartial bool `json:"allow_partial"`
}

// BulkAnalyzeRequest is the request body for analyzing multiple sales orders
type BulkAnalyzeRequest struct {
	SalesOrderIDs []string `json:"sales_order_ids" binding:"required,min=1,dive,uuid"`
}

// ReceivePurchaseOrderRequest is the request body for posting a goods receipt
type ReceivePurchaseOrderRequest struct {
	Items []ReceiveItemInput `json:"items" binding:"required,min=1,dive"`
}

// ReceiveItemInput is one received line in a goods receipt
type ReceiveItemInput struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// CancelPurchaseOrderRequest is the request body for cancelling a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// Analyze computes the vendor-grouped purchase plan for a sales order.
// It is a read-only dry run: nothing is written.
func (h *PurchasePlanningHandler) Analyze(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	plan, err := h.planningService.AnalyzePurchaseRequirements(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// Generate creates one purchase order per vendor for a sales order's
// outstanding demand. Re-running after success is a no-op.
func (h *PurchasePlanningHandler) Generate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req GeneratePurchaseOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := tradeapp.GeneratePurchaseOrdersRequest{
		AllowPartial: req.AllowPartial,
	}
	if userID, err := getUserID(c); err == nil {
		appReq.CreatedBy = &userID
	}

	orders, err := h.planningService.GeneratePurchaseOrders(c.Request.Context(), tenantID, orderID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, orders)
}

// StatusSummary reports purchasing progress for a sales order
func (h *PurchasePlanningHandler) StatusSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	summary, err := h.planningService.GetStatusSummary(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// BulkAnalyze analyzes purchase requirements across multiple sales orders
func (h *PurchasePlanningHandler) BulkAnalyze(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req BulkAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderIDs := make([]uuid.UUID, 0, len(req.SalesOrderIDs))
	for _, raw := range req.SalesOrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid sales order ID format")
			return
		}
		orderIDs = append(orderIDs, id)
	}

	entries, err := h.planningService.BulkAnalyze(c.Request.Context(), tenantID, orderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// Receive posts a goods receipt against a purchase order
func (h *PurchasePlanningHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	purchaseOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	var req ReceivePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := tradeapp.ReceivePurchaseOrderRequest{}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		appReq.Items = append(appReq.Items, tradeapp.ReceiveItemInput{
			ProductID: productID,
			Quantity:  decimal.NewFromFloat(item.Quantity),
		})
	}

	order, err := h.planningService.ReceivePurchaseOrder(c.Request.Context(), tenantID, purchaseOrderID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel cancels a purchase order and releases its sales line quantities
func (h *PurchasePlanningHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	purchaseOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	var req CancelPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.planningService.CancelPurchaseOrder(c.Request.Context(), tenantID, purchaseOrderID, tradeapp.CancelPurchaseOrderRequest{Reason: req.Reason}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all purchase planning routes
func (h *PurchasePlanningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tradeGroup := rg.Group("/trade")
	{
		tradeGroup.GET("/sales-orders/:id/purchase-requirements", h.Analyze)
		tradeGroup.POST("/sales-orders/:id/purchase-orders", h.Generate)
		tradeGroup.GET("/sales-orders/:id/purchase-status", h.StatusSummary)
		tradeGroup.POST("/purchase-requirements/bulk-analyze", h.BulkAnalyze)
		tradeGroup.POST("/purchase-orders/:id/receive", h.Receive)
		tradeGroup.POST("/purchase-orders/:id/cancel", h.Cancel)
	}
}
