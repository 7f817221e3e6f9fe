package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrPartyNotFound    = errors.New("party not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrDocumentNotFound = errors.New("document not found")

	// ErrValidation is the base error all ValidationErrors match via errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrOverPayment              = errors.New("payment exceeds pending amount")
	ErrDocumentCancelled        = errors.New("document is cancelled")
	ErrPaidDocumentCancellation = errors.New("fully paid document cannot be cancelled; issue a credit note instead")

	ErrNumberConflict        = errors.New("document number already allocated")
	ErrVersionConflict       = errors.New("document was modified concurrently")
	ErrAlreadyConverted      = errors.New("document already converted")
	ErrConversionInProgress  = errors.New("conversion already in progress")
	ErrSameCompanyConversion = errors.New("cross-company conversion requires a different target company")
	ErrDuplicatePartyPhone   = errors.New("party phone already exists for this company")

	ErrStockAdjustment = errors.New("stock adjustment failed")

	ErrSequenceExhausted = errors.New("daily document sequence exhausted")
	ErrTotalsMismatch    = errors.New("document totals disagree with line totals")
)

// ValidationError reports malformed input, identifying the offending field and,
// for line-item errors, the zero-based line index (-1 when not line-scoped).
type ValidationError struct {
	Field string
	Line  int
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("validation failed: line %d: %s: %s", e.Line, e.Field, e.Msg)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a document-scoped validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Line: -1, Msg: msg}
}

// NewLineValidationError builds a line-scoped validation error.
func NewLineValidationError(line int, field, msg string) *ValidationError {
	return &ValidationError{Field: field, Line: line, Msg: msg}
}
