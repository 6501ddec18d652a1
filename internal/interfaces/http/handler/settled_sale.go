package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcommerce "github.com/comercio/backend/internal/application/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/interfaces/http/middleware"
)

// SettledSaleHandler exposes the settlement records over HTTP. Settlements
// are created through the sales order resource; this handler covers reads
// and same-day reversal.
type SettledSaleHandler struct {
	BaseHandler
	service *appcommerce.SettledSaleService
}

// NewSettledSaleHandler creates a new SettledSaleHandler
func NewSettledSaleHandler(service *appcommerce.SettledSaleService) *SettledSaleHandler {
	return &SettledSaleHandler{service: service}
}

// RegisterRoutes registers settled sale routes on the given group
func (h *SettledSaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/settled-sales")
	{
		sales.GET("", h.List)
		sales.GET("/statistics", h.Statistics)
		sales.GET("/:id", h.GetByID)
		sales.DELETE("/:id", h.Delete)
	}
}

// GetByID handles GET /settled-sales/:id
func (h *SettledSaleHandler) GetByID(c *gin.Context) {
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

// List handles GET /settled-sales. Optional from/to query params bound the
// settlement date window.
func (h *SettledSaleHandler) List(c *gin.Context) {
	var req appcommerce.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	ctx := c.Request.Context()

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

// Delete handles DELETE /settled-sales/:id. Only same-day settlements can
// be reversed; the stock decrement is undone in the same transaction.
func (h *SettledSaleHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.GetActorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Statistics handles GET /settled-sales/statistics
func (h *SettledSaleHandler) Statistics(c *gin.Context) {
	resp, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *SettledSaleHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SettledSaleHandler) respondPage(c *gin.Context, page *shared.Paginated[appcommerce.SettledSaleResponse], err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
