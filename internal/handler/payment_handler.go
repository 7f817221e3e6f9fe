package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
	"shopbooks/internal/service"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// AddPayment handles POST /api/v1/documents/:id/payments
// @Summary Record a payment
// @Description Apply a payment against a document's pending balance. Over-payment is rejected.
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse "Updated document"
// @Failure 404 {object} APIResponse "Document not found"
// @Failure 409 {object} APIResponse "Document cancelled or concurrently modified"
// @Failure 422 {object} APIResponse "Payment exceeds pending amount"
// @Security BearerAuth
// @Router /documents/{id}/payments [post]
func (h *PaymentHandler) AddPayment(c *gin.Context) {
	companyID, actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		Method      string          `json:"method"`
		Reference   string          `json:"reference"`
		PaymentDate string          `json:"payment_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "amount is required")
		return
	}

	svcReq := service.AddPaymentRequest{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		CreatedBy: actor,
	}
	if req.PaymentDate != "" {
		date, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			HandleError(c, domain.NewValidationError("payment_date", "must be YYYY-MM-DD"))
			return
		}
		svcReq.PaymentDate = date
	}

	doc, err := h.paymentService.AddPayment(c.Request.Context(), companyID, docID, svcReq)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, toDocumentDTO(doc))
}

// SetDueDate handles PUT /api/v1/documents/:id/due-date
// @Summary Set a document's due date
// @Description Set or move the payment due date; the overdue status re-derives immediately
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse "Updated document"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/due-date [put]
func (h *PaymentHandler) SetDueDate(c *gin.Context) {
	companyID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		DueDate string `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "due_date is required")
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		HandleError(c, domain.NewValidationError("due_date", "must be YYYY-MM-DD"))
		return
	}

	doc, err := h.paymentService.SetDueDate(c.Request.Context(), companyID, docID, dueDate)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, toDocumentDTO(doc))
}
