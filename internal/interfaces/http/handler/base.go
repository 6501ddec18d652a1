package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/infrastructure/logger"
	"github.com/comercio/backend/internal/interfaces/http/dto"
	"github.com/comercio/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the response helpers shared by all handlers.
type BaseHandler struct{}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.respondError(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.respondError(c, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.respondError(c, dto.ErrCodeUnauthorized, message)
}

// Conflict sends a 409 response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.respondError(c, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.respondError(c, dto.ErrCodeInternal, message)
}

// HandleError maps a service error onto the response envelope. Unrecognized
// errors are logged and reported as 500 without leaking internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	switch {
	case shared.IsValidation(err):
		var ve *shared.ValidationError
		errors.As(err, &ve)
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
			"validation failed", requestID,
			[]dto.ValidationDetail{{Field: ve.Field, Message: "violates rule " + ve.Rule}}))
	case shared.IsNotFound(err):
		var nfe *shared.NotFoundError
		errors.As(err, &nfe)
		c.JSON(http.StatusNotFound,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, nfe.Error(), requestID))
	case shared.IsConflict(err):
		var ce *shared.ConflictError
		errors.As(err, &ce)
		c.JSON(http.StatusConflict,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeConflict, ce.Error(), requestID))
	case shared.IsBusinessRule(err):
		var bre *shared.BusinessRuleError
		errors.As(err, &bre)
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBusinessRule, bre.Error(), requestID))
	default:
		logger.L(c.Request.Context()).Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "internal server error", requestID))
	}
}

// HandleBindingError maps a request binding failure onto the response
// envelope: validator errors become 422 with field details, everything
// else is a 400.
func (h *BaseHandler) HandleBindingError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
			"validation failed", requestID, middleware.FormatValidationErrors(verrs)))
		return
	}
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "malformed request body", requestID))
}

func (h *BaseHandler) respondError(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
