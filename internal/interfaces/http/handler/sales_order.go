package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcommerce "github.com/comercio/backend/internal/application/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/interfaces/http/middleware"
)

// SalesOrderHandler exposes the sales order lifecycle over HTTP.
type SalesOrderHandler struct {
	BaseHandler
	service    *appcommerce.SalesOrderService
	settlement *appcommerce.SettledSaleService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(service *appcommerce.SalesOrderService, settlement *appcommerce.SettledSaleService) *SalesOrderHandler {
	return &SalesOrderHandler{service: service, settlement: settlement}
}

// RegisterRoutes registers sales order routes on the given group
func (h *SalesOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/sales-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/statistics", h.Statistics)
		orders.GET("/realized-total", h.RealizedTotal)
		orders.GET("/:id", h.GetByID)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/status", h.TransitionStatus)
		orders.POST("/:id/settlement", h.ProcessSettlement)
		orders.GET("/:id/settlement", h.GetSettlement)
	}
}

// Create handles POST /sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req appcommerce.CreateSalesOrderRequest
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

// GetByID handles GET /sales-orders/:id
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
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

// List handles GET /sales-orders. Optional query filters: customer_id,
// status, from/to (creation date window, 2006-01-02).
func (h *SalesOrderHandler) List(c *gin.Context) {
	var req appcommerce.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	ctx := c.Request.Context()

	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "customer_id must be a valid UUID")
			return
		}
		page, err := h.service.ListByCustomer(ctx, customerID, req)
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

// Update handles PUT /sales-orders/:id
func (h *SalesOrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appcommerce.UpdateSalesOrderRequest
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

// Delete handles DELETE /sales-orders/:id
func (h *SalesOrderHandler) Delete(c *gin.Context) {
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

// TransitionStatus handles POST /sales-orders/:id/status
func (h *SalesOrderHandler) TransitionStatus(c *gin.Context) {
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

// ProcessSettlement handles POST /sales-orders/:id/settlement. The order
// must be DELIVERED; settlement decrements stock and freezes the order.
func (h *SalesOrderHandler) ProcessSettlement(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appcommerce.ProcessSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.settlement.ProcessFromOrder(c.Request.Context(), id, req, middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetSettlement handles GET /sales-orders/:id/settlement
func (h *SalesOrderHandler) GetSettlement(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.settlement.GetByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Statistics handles GET /sales-orders/statistics
func (h *SalesOrderHandler) Statistics(c *gin.Context) {
	resp, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RealizedTotal handles GET /sales-orders/realized-total
func (h *SalesOrderHandler) RealizedTotal(c *gin.Context) {
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

func (h *SalesOrderHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SalesOrderHandler) respondPage(c *gin.Context, page *shared.Paginated[appcommerce.SalesOrderResponse], err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
