package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcommerce "github.com/comercio/backend/internal/application/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/interfaces/http/middleware"
)

// PurchaseOrderHandler exposes the purchase order lifecycle over HTTP.
type PurchaseOrderHandler struct {
	BaseHandler
	service *appcommerce.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *appcommerce.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// RegisterRoutes registers purchase order routes on the given group
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/statistics", h.Statistics)
		orders.GET("/realized-total", h.RealizedTotal)
		orders.GET("/by-number/:number", h.GetByNumber)
		orders.GET("/:id", h.GetByID)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/status", h.TransitionStatus)
	}
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req appcommerce.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req, middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber handles GET /purchase-orders/by-number/:number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	resp, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /purchase-orders. Optional query filters: supplier_id,
// status, from/to (issue date window, 2006-01-02).
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var req appcommerce.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	ctx := c.Request.Context()

	if raw := c.Query("supplier_id"); raw != "" {
		supplierID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "supplier_id must be a valid UUID")
			return
		}
		page, err := h.service.ListBySupplier(ctx, supplierID, req)
		h.respondPage(c, page, err)
		return
	}

	if status := c.Query("status"); status != "" {
		page, err := h.service.ListByStatus(ctx, status, req)
		h.respondPage(c, page, err)
		return
	}

	if from, to, ok, err := parseDateWindow(c); err != nil {
		h.BadRequest(c, err.Error())
		return
	} else if ok {
		page, err := h.service.ListByDateRange(ctx, from, to, req)
		h.respondPage(c, page, err)
		return
	}

	page, err := h.service.List(ctx, req)
	h.respondPage(c, page, err)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appcommerce.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req, middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TransitionStatus handles POST /purchase-orders/:id/status
func (h *PurchaseOrderHandler) TransitionStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appcommerce.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.service.TransitionStatus(c.Request.Context(), id, req.Status, middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Statistics handles GET /purchase-orders/statistics
func (h *PurchaseOrderHandler) Statistics(c *gin.Context) {
	resp, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RealizedTotal handles GET /purchase-orders/realized-total. Optional
// from/to query params bound the issue date window.
func (h *PurchaseOrderHandler) RealizedTotal(c *gin.Context) {
	from, to, err := parseOptionalDateWindow(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	total, err := h.service.RealizedTotal(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"total": total})
}

func (h *PurchaseOrderHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *PurchaseOrderHandler) respondPage(c *gin.Context, page *shared.Paginated[appcommerce.PurchaseOrderResponse], err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
