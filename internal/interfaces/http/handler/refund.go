package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppayment "github.com/tiffin/backend/internal/application/payment"
	"github.com/tiffin/backend/internal/interfaces/http/dto"
)

// RefundHandler exposes the refund request workflow
type RefundHandler struct {
	BaseHandler
	service *apppayment.RefundService
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(service *apppayment.RefundService) *RefundHandler {
	return &RefundHandler{service: service}
}

// RegisterRoutes registers refund routes
func (h *RefundHandler) RegisterRoutes(rg *gin.RouterGroup) {
	refunds := rg.Group("/refunds")
	{
		refunds.POST("", h.RequestRefund)
		refunds.GET("", h.ListRefunds)
		refunds.GET("/:id", h.GetRefund)
		refunds.POST("/:id/approve", h.ApproveRefund)
		refunds.POST("/:id/cancel", h.CancelRefund)
	}
}

// RequestRefund creates a pending refund against a payment's excess or a credit
func (h *RefundHandler) RequestRefund(c *gin.Context) {
	var req apppayment.RequestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RequestRefund(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListRefunds lists a customer's refund requests, newest first
func (h *RefundHandler) ListRefunds(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		h.BadRequest(c, "a customer_id query parameter is required")
		return
	}

	results, err := h.service.ListRefunds(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// GetRefund fetches one refund request
func (h *RefundHandler) GetRefund(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.GetRefund(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ApproveRefund completes a pending refund and deducts the refunded balance
func (h *RefundHandler) ApproveRefund(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req apppayment.ApproveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ApproveRefund(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CancelRefund cancels a pending refund, leaving balances untouched
func (h *RefundHandler) CancelRefund(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.CancelRefund(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *RefundHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
