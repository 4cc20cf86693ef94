package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/tiffin/backend/internal/application/billing"
	"github.com/tiffin/backend/internal/interfaces/http/dto"
)

// BillingHandler exposes billing computation and the billing/invoice
// state machines over HTTP
type BillingHandler struct {
	BaseHandler
	service *appbilling.Service
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(service *appbilling.Service) *BillingHandler {
	return &BillingHandler{service: service}
}

// RegisterRoutes registers billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	{
		billing.POST("/compute", h.ComputeOrderBilling)
		billing.GET("/orders/:id", h.GetOrderBilling)
		billing.POST("/orders/:id/finalize", h.FinalizeBilling)
		billing.POST("/orders/:id/reopen", h.ReopenBilling)
		billing.POST("/combined/compute", h.ComputeCombinedInvoice)
		billing.GET("/combined/:id", h.GetCombinedInvoice)
		billing.POST("/combined/:id/finalize", h.FinalizeCombinedInvoice)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.GET("/unpaid/:customerId", h.ListUnpaidInvoices)
	}
}

// ComputeOrderBilling recomputes one order's billing snapshot for a month
func (h *BillingHandler) ComputeOrderBilling(c *gin.Context) {
	var req appbilling.ComputeOrderBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ComputeOrderBilling(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetOrderBilling fetches one billing snapshot. With a ?month= query the
// path id is the order id and the snapshot is looked up by order and month.
func (h *BillingHandler) GetOrderBilling(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var result *appbilling.OrderBillingResult
	var err error
	if month := c.Query("month"); month != "" {
		result, err = h.service.GetOrderBillingForMonth(c.Request.Context(), id, month)
	} else {
		result, err = h.service.GetOrderBilling(c.Request.Context(), id)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// FinalizeBilling freezes a billing snapshot
func (h *BillingHandler) FinalizeBilling(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.FinalizeBilling(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReopenBilling returns a finalized snapshot to the calculating state
func (h *BillingHandler) ReopenBilling(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.ReopenBilling(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ComputeCombinedInvoice refreshes the customer-level invoice for a month
func (h *BillingHandler) ComputeCombinedInvoice(c *gin.Context) {
	var req appbilling.ComputeCombinedInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ComputeCombinedInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetCombinedInvoice fetches one combined invoice. With a ?month= query the
// path id is the customer id and the invoice is looked up by customer and month.
func (h *BillingHandler) GetCombinedInvoice(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var result *appbilling.CombinedInvoiceResult
	var err error
	if month := c.Query("month"); month != "" {
		result, err = h.service.GetCombinedInvoiceForMonth(c.Request.Context(), id, month)
	} else {
		result, err = h.service.GetCombinedInvoice(c.Request.Context(), id)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// FinalizeCombinedInvoice makes the invoice payable and marks its
// constituents invoiced
func (h *BillingHandler) FinalizeCombinedInvoice(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.FinalizeCombinedInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListUnpaidInvoices lists a customer's payable invoices, oldest month first
func (h *BillingHandler) ListUnpaidInvoices(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "invalid customer id")
		return
	}

	results, err := h.service.ListUnpaidInvoices(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

func (h *BillingHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
