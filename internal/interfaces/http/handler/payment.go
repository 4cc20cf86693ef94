package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppayment "github.com/tiffin/backend/internal/application/payment"
	"github.com/tiffin/backend/internal/interfaces/http/dto"
)

// PaymentHandler exposes payment recording, allocation and credit lookups
type PaymentHandler struct {
	BaseHandler
	allocations *apppayment.AllocationService
	credits     *apppayment.CreditService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(allocations *apppayment.AllocationService, credits *apppayment.CreditService) *PaymentHandler {
	return &PaymentHandler{allocations: allocations, credits: credits}
}

// RegisterRoutes registers payment and credit routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.POST("/auto-select", h.AutoSelect)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/allocate", h.AllocatePayment)
		payments.DELETE("/:id", h.DeletePayment)
	}

	credits := rg.Group("/credits")
	{
		credits.GET("/:customerId", h.GetAvailableCredit)
		credits.GET("/:customerId/history", h.ListCredits)
	}
}

// CreatePayment records an incoming payment in the unallocated state
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req apppayment.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.allocations.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetPayment fetches one payment with its allocations
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.allocations.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListPayments lists a customer's payments, newest first
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		h.BadRequest(c, "a customer_id query parameter is required")
		return
	}

	results, err := h.allocations.ListPayments(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// allocateBody is the allocate endpoint body; the payment comes from the path
type allocateBody struct {
	Allocations []apppayment.AllocationEntry `json:"allocations"`
}

// AllocatePayment commits a payment's allocation split. An empty
// allocations list selects invoices automatically, oldest first.
func (h *PaymentHandler) AllocatePayment(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var body allocateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.allocations.AllocatePayment(c.Request.Context(), apppayment.AllocatePaymentRequest{
		PaymentID:   id,
		Allocations: body.Allocations,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// deletePaymentBody carries the mandatory audit reason
type deletePaymentBody struct {
	Reason string `json:"reason" binding:"required"`
}

// DeletePayment unwinds a payment's allocations and soft-deletes the record
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var body deletePaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "a deletion reason is required")
		return
	}

	if err := h.allocations.DeletePayment(c.Request.Context(), id, body.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AutoSelect previews the oldest-first allocation for an amount without
// committing anything
func (h *PaymentHandler) AutoSelect(c *gin.Context) {
	var req apppayment.AutoSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.allocations.AutoSelect(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetAvailableCredit returns the customer's spendable credit position
func (h *PaymentHandler) GetAvailableCredit(c *gin.Context) {
	customerID, ok := h.bindCustomerID(c)
	if !ok {
		return
	}

	result, err := h.credits.GetAvailableCredit(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListCredits lists all of a customer's credits, consumed ones included
func (h *PaymentHandler) ListCredits(c *gin.Context) {
	customerID, ok := h.bindCustomerID(c)
	if !ok {
		return
	}

	results, err := h.credits.ListCredits(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

func (h *PaymentHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

func (h *PaymentHandler) bindCustomerID(c *gin.Context) (uuid.UUID, bool) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "invalid customer id")
		return uuid.Nil, false
	}
	return customerID, true
}
