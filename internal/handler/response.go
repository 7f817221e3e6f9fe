package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopbooks/internal/domain"
	"shopbooks/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response. Field and Line are set for
// validation failures; Line is the zero-based line item index.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Line    *int   `json:"line,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrCompanyNotFound):
		return http.StatusNotFound, "COMPANY_NOT_FOUND", "company not found"
	case errors.Is(err, domain.ErrPartyNotFound):
		return http.StatusNotFound, "PARTY_NOT_FOUND", "party not found"
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, "ITEM_NOT_FOUND", "item not found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_FAILED", err.Error()
	case errors.Is(err, domain.ErrOverPayment):
		return http.StatusUnprocessableEntity, "OVER_PAYMENT", "payment exceeds pending amount"
	case errors.Is(err, domain.ErrDocumentCancelled):
		return http.StatusConflict, "DOCUMENT_CANCELLED", "document is cancelled"
	case errors.Is(err, domain.ErrPaidDocumentCancellation):
		return http.StatusConflict, "PAID_DOCUMENT", "fully paid document cannot be cancelled; issue a credit note instead"
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, "CONCURRENT_UPDATE", "document was modified concurrently; retry"
	case errors.Is(err, domain.ErrAlreadyConverted):
		return http.StatusConflict, "ALREADY_CONVERTED", "document already converted"
	case errors.Is(err, domain.ErrConversionInProgress):
		return http.StatusConflict, "CONVERSION_IN_PROGRESS", "a conversion of this document is already in progress"
	case errors.Is(err, domain.ErrSameCompanyConversion):
		return http.StatusBadRequest, "SAME_COMPANY", "cross-company conversion requires a different target company"
	case errors.Is(err, domain.ErrDuplicatePartyPhone):
		return http.StatusConflict, "DUPLICATE_PHONE", "party phone already exists for this company"
	case errors.Is(err, domain.ErrSequenceExhausted):
		return http.StatusConflict, "SEQUENCE_EXHAUSTED", "daily document sequence exhausted for this prefix"
	case errors.Is(err, domain.ErrTotalsMismatch):
		return http.StatusInternalServerError, "TOTALS_MISMATCH", "document totals disagree with line totals"
	case errors.Is(err, domain.ErrStockAdjustment):
		return http.StatusInternalServerError, "STOCK_ADJUSTMENT_FAILED", "stock adjustment failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response,
// carrying field and line details through for validation failures.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("http: internal error request_id=%s: %v",
			c.GetString(middleware.ContextKeyRequestID), err)
	}

	apiErr := &APIError{Code: code, Message: msg}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		apiErr.Field = verr.Field
		if verr.Line >= 0 {
			line := verr.Line
			apiErr.Line = &line
		}
	}
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}

// extractAuthContext extracts company ID and actor name from the request
// context. Returns false if auth context is missing (error response already
// written).
func extractAuthContext(c *gin.Context) (companyID uuid.UUID, actor string, ok bool) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing company context")
		return uuid.Nil, "", false
	}
	return companyID, middleware.GetActor(c), true
}
