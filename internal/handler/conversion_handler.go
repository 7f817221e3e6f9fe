package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopbooks/internal/service"
)

// ConversionHandler handles document conversion endpoints.
type ConversionHandler struct {
	conversionService service.ConversionService
}

// NewConversionHandler creates a new ConversionHandler.
func NewConversionHandler(conversionService service.ConversionService) *ConversionHandler {
	return &ConversionHandler{conversionService: conversionService}
}

// ConvertToInvoice handles POST /api/v1/documents/:id/convert
// @Summary Convert a sales order to an invoice
// @Description Create the sales invoice for a sales order. Each order converts exactly once; repeat calls return the existing invoice.
// @Tags conversions
// @Produce json
// @Param id path string true "Sales order ID (UUID)"
// @Success 201 {object} APIResponse "Created invoice"
// @Failure 404 {object} APIResponse "Order not found"
// @Failure 409 {object} APIResponse "Conversion in progress"
// @Security BearerAuth
// @Router /documents/{id}/convert [post]
func (h *ConversionHandler) ConvertToInvoice(c *gin.Context) {
	companyID, actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	invoice, err := h.conversionService.ConvertOrderToInvoice(c.Request.Context(), companyID, orderID, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, toDocumentDTO(invoice))
}

// ConvertToPurchase handles POST /api/v1/documents/:id/convert-to-purchase
// @Summary Convert a sales invoice to a purchase invoice
// @Description Mirror a sales invoice into another company's books as a purchase invoice, creating the supplier party if needed
// @Tags conversions
// @Accept json
// @Produce json
// @Param id path string true "Sales invoice ID (UUID)"
// @Success 201 {object} APIResponse "Created purchase invoice"
// @Failure 400 {object} APIResponse "Same-company conversion"
// @Failure 404 {object} APIResponse "Invoice or company not found"
// @Failure 409 {object} APIResponse "Conversion in progress"
// @Security BearerAuth
// @Router /documents/{id}/convert-to-purchase [post]
func (h *ConversionHandler) ConvertToPurchase(c *gin.Context) {
	companyID, actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		TargetCompanyID uuid.UUID `json:"target_company_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "target_company_id is required")
		return
	}

	purchase, err := h.conversionService.ConvertInvoiceToPurchase(
		c.Request.Context(), companyID, invoiceID, req.TargetCompanyID, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, toDocumentDTO(purchase))
}
