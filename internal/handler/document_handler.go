package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
	"shopbooks/internal/service"
	"shopbooks/internal/xlsxexport"
)

const dateLayout = "2006-01-02"

// DocumentHandler handles document lifecycle endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// createLineRequest is one requested line. tax_mode accepts the canonical
// inclusive/exclusive values plus the legacy gst_mode spellings still sent by
// older clients.
type createLineRequest struct {
	ItemID          *uuid.UUID      `json:"item_id"`
	Name            string          `json:"name" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxMode         string          `json:"tax_mode"`
	GSTMode         string          `json:"gst_mode"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
}

type createDocumentRequest struct {
	Type            string              `json:"type" binding:"required"`
	PartyID         uuid.UUID           `json:"party_id" binding:"required"`
	Date            string              `json:"date"`
	GSTEnabled      *bool               `json:"gst_enabled"`
	RoundOffEnabled bool                `json:"round_off_enabled"`
	RoundOff        decimal.Decimal     `json:"round_off"`
	Notes           string              `json:"notes"`
	PaymentMethod   string              `json:"payment_method"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	CreditDays      int                 `json:"credit_days"`
	DueDate         *string             `json:"due_date"`
	Items           []createLineRequest `json:"items" binding:"required"`
}

// lineItemDTO mirrors a stored line with the legacy amount aliases older
// clients still read (cgst_amount, item_amount, ...).
type lineItemDTO struct {
	domain.LineItem
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`
	IGSTAmount decimal.Decimal `json:"igst_amount"`
	ItemAmount decimal.Decimal `json:"item_amount"`
}

// documentDTO is a document with alias-enriched line items.
type documentDTO struct {
	*domain.Document
	Items []lineItemDTO `json:"items"`
}

func toDocumentDTO(doc *domain.Document) documentDTO {
	items := make([]lineItemDTO, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, lineItemDTO{
			LineItem:   it,
			CGSTAmount: it.CGST,
			SGSTAmount: it.SGST,
			IGSTAmount: it.IGST,
			ItemAmount: it.LineTotal,
		})
	}
	return documentDTO{Document: doc, Items: items}
}

// Create handles POST /api/v1/documents
// @Summary Create a document
// @Description Create an invoice, order, or purchase with calculated totals, an allocated number, and stock movements
// @Tags documents
// @Accept json
// @Produce json
// @Param request body createDocumentRequest true "Document details"
// @Success 201 {object} APIResponse "Document created"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 404 {object} APIResponse "Party or company not found"
// @Failure 409 {object} APIResponse "Sequence exhausted"
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	companyID, actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "type, party_id, and items are required")
		return
	}

	svcReq, err := h.toServiceRequest(req, actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.documentService.Create(c.Request.Context(), companyID, svcReq)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{
		"document":      toDocumentDTO(result.Document),
		"stock_changes": result.StockChanges,
	})
}

func (h *DocumentHandler) toServiceRequest(req createDocumentRequest, actor string) (service.CreateDocumentRequest, error) {
	svcReq := service.CreateDocumentRequest{
		Type:            domain.DocumentType(req.Type),
		PartyID:         req.PartyID,
		GSTEnabled:      req.GSTEnabled,
		RoundOffEnabled: req.RoundOffEnabled,
		RoundOff:        req.RoundOff,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
		PaidAmount:      req.PaidAmount,
		CreditDays:      req.CreditDays,
		CreatedBy:       actor,
	}

	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return svcReq, domain.NewValidationError("date", "must be YYYY-MM-DD")
		}
		svcReq.Date = date
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return svcReq, domain.NewValidationError("due_date", "must be YYYY-MM-DD")
		}
		svcReq.DueDate = &due
	}

	for i, l := range req.Items {
		modeStr := l.TaxMode
		if modeStr == "" {
			modeStr = l.GSTMode
		}
		mode, ok := domain.NormalizeTaxMode(modeStr)
		if !ok {
			return svcReq, domain.NewLineValidationError(i, "tax_mode", "unknown tax mode")
		}
		svcReq.Lines = append(svcReq.Lines, service.DocumentLineRequest{
			ItemID:          l.ItemID,
			Name:            l.Name,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			PricePerUnit:    l.PricePerUnit,
			TaxRate:         l.TaxRate,
			TaxMode:         mode,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
		})
	}
	return svcReq, nil
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Description Get a document with its line items and payment history
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse "Document details"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	companyID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), companyID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, toDocumentDTO(doc))
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List the company's documents, optionally filtered by type, newest first
// @Tags documents
// @Produce json
// @Param type query string false "Document type filter"
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} APIResponse "Documents"
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	companyID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docType := domain.DocumentType(c.Query("type"))
	if docType != "" && !domain.ValidDocumentTypes[docType] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown document type")
		return
	}
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 20)

	docs, total, err := h.documentService.List(c.Request.Context(), companyID, docType, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	dtos := make([]documentDTO, 0, len(docs))
	for i := range docs {
		dtos = append(dtos, toDocumentDTO(&docs[i]))
	}
	RespondPaginated(c, dtos, PagMeta{Total: total, Page: page, PageSize: pageSize})
}

// Cancel handles POST /api/v1/documents/:id/cancel
// @Summary Cancel a document
// @Description Cancel a document, reverse its payments, and restore stock. Fully paid documents cannot be cancelled.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse "Cancelled document"
// @Failure 404 {object} APIResponse "Document not found"
// @Failure 409 {object} APIResponse "Already cancelled or fully paid"
// @Security BearerAuth
// @Router /documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *gin.Context) {
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
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	doc, err := h.documentService.Cancel(c.Request.Context(), companyID, docID, req.Reason, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, toDocumentDTO(doc))
}

// Export handles GET /api/v1/documents/export
// @Summary Export documents to XLSX
// @Description Download the company's documents as a spreadsheet, optionally filtered by type
// @Tags documents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type query string false "Document type filter"
// @Success 200 {file} binary "XLSX file"
// @Security BearerAuth
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	companyID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docType := domain.DocumentType(c.Query("type"))
	if docType != "" && !domain.ValidDocumentTypes[docType] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown document type")
		return
	}

	var all []domain.Document
	for page := 1; ; page++ {
		docs, total, err := h.documentService.List(c.Request.Context(), companyID, docType, page, 100)
		if err != nil {
			HandleError(c, err)
			return
		}
		all = append(all, docs...)
		if len(all) >= total || len(docs) == 0 {
			break
		}
	}

	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := xlsxexport.WriteDocuments(c.Writer, all); err != nil {
		HandleError(c, err)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
