package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
)

// StockKeeper records supplies and manual stock corrections
type StockKeeper interface {
	AddBulk(ctx context.Context, entries []inventoryapp.SupplyEntry) ([]inventoryapp.BatchResponse, error)
	ManualAdjust(ctx context.Context, input inventoryapp.AdjustInput) (*inventoryapp.AdjustResult, error)
}

// StockAlerter answers stock alert queries
type StockAlerter interface {
	LowStock(ctx context.Context, threshold int64) ([]inventoryapp.StockAlert, error)
	ExpiringSoon(ctx context.Context, days int, minQty int64) ([]inventoryapp.StockAlert, error)
}

// InventoryHandler handles supplies, adjustments and stock alerts
type InventoryHandler struct {
	BaseHandler
	supplyService StockKeeper
	alertService  StockAlerter
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(supplyService StockKeeper, alertService StockAlerter) *InventoryHandler {
	return &InventoryHandler{supplyService: supplyService, alertService: alertService}
}

// AddSupplies handles POST /supplies. The body is a non-empty array of
// supply entries, recorded atomically.
func (h *InventoryHandler) AddSupplies(c *gin.Context) {
	var entries []inventoryapp.SupplyEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		h.BindError(c, err)
		return
	}
	if len(entries) == 0 {
		h.BadRequest(c, "Request body must be a non-empty array of supply entries")
		return
	}

	batches, err := h.supplyService.AddBulk(c.Request.Context(), entries)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batches)
}

// Adjust handles PATCH /products/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.supplyService.ManualAdjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type lowStockQuery struct {
	Threshold int64 `form:"threshold" binding:"omitempty,min=1"`
}

// LowStock handles GET /alerts/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var q lowStockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	alerts, err := h.alertService.LowStock(c.Request.Context(), q.Threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

type expiringQuery struct {
	Days   int   `form:"days" binding:"omitempty,min=1"`
	MinQty int64 `form:"min_qty" binding:"omitempty,min=1"`
}

// Expiring handles GET /alerts/expiring
func (h *InventoryHandler) Expiring(c *gin.Context) {
	var q expiringQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	alerts, err := h.alertService.ExpiringSoon(c.Request.Context(), q.Days, q.MinQty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}
