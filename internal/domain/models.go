package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company represents an isolated set of books. All documents, parties, items,
// and number sequences are scoped to a company.
type Company struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GSTIN      string    `db:"gstin" json:"gstin"`
	State      string    `db:"state" json:"state"`
	GSTEnabled bool      `db:"gst_enabled" json:"gst_enabled"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Party is a customer or supplier in a company's directory. ExternalRef holds
// the originating company's ID for counterparties synthesized during
// cross-company conversion; it is the stable identity key for find-or-create.
type Party struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	CompanyID   uuid.UUID  `db:"company_id" json:"company_id"`
	Kind        PartyKind  `db:"kind" json:"kind"`
	Name        string     `db:"name" json:"name"`
	Phone       string     `db:"phone" json:"phone"`
	Email       string     `db:"email" json:"email"`
	GSTIN       string     `db:"gstin" json:"gstin"`
	ExternalRef *uuid.UUID `db:"external_ref" json:"external_ref,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Item is an inventory item. Stock is a downstream projection of document
// activity, never the financial source of truth.
type Item struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	CompanyID    uuid.UUID       `db:"company_id" json:"company_id"`
	Name         string          `db:"name" json:"name"`
	Unit         string          `db:"unit" json:"unit"`
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"price_per_unit"`
	TaxRate      decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	Stock        decimal.Decimal `db:"stock" json:"stock"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// LineItem is a calculated document line. One canonical field per amount;
// legacy aliases (cgst_amount, item_amount, ...) exist only in the API DTOs.
type LineItem struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DocumentID      uuid.UUID       `db:"document_id" json:"document_id"`
	Position        int             `db:"position" json:"position"`
	ItemID          *uuid.UUID      `db:"item_id" json:"item_id,omitempty"`
	Name            string          `db:"name" json:"name"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	Unit            string          `db:"unit" json:"unit"`
	PricePerUnit    decimal.Decimal `db:"price_per_unit" json:"price_per_unit"`
	TaxRate         decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	TaxMode         TaxMode         `db:"tax_mode" json:"tax_mode"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`

	TaxableAmount decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	CGST          decimal.Decimal `db:"cgst" json:"cgst"`
	SGST          decimal.Decimal `db:"sgst" json:"sgst"`
	IGST          decimal.Decimal `db:"igst" json:"igst"`
	LineTotal     decimal.Decimal `db:"line_total" json:"line_total"`
}

// Totals holds document-level monetary totals.
// Invariant: FinalTotal == sum of line totals + RoundOff.
type Totals struct {
	Subtotal           decimal.Decimal `db:"subtotal" json:"subtotal"`
	TotalDiscount      decimal.Decimal `db:"total_discount" json:"total_discount"`
	TotalTax           decimal.Decimal `db:"total_tax" json:"total_tax"`
	TotalTaxableAmount decimal.Decimal `db:"total_taxable_amount" json:"total_taxable_amount"`
	RoundOff           decimal.Decimal `db:"round_off" json:"round_off"`
	FinalTotal         decimal.Decimal `db:"final_total" json:"final_total"`
}

// PaymentInfo is the current payment state of a document.
// PendingAmount == max(0, FinalTotal - PaidAmount).
type PaymentInfo struct {
	Method        string          `db:"payment_method" json:"method"`
	Status        PaymentStatus   `db:"payment_status" json:"status"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	PendingAmount decimal.Decimal `db:"pending_amount" json:"pending_amount"`
	PaymentDate   *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	DueDate       *time.Time      `db:"due_date" json:"due_date,omitempty"`
	CreditDays    int             `db:"credit_days" json:"credit_days"`
}

// ConversionLink records a document's participation in a conversion.
// The source owns the link; the target is resolved by ID lookup.
// Converted is one-way: unconverted -> converted, no reverse transition.
type ConversionLink struct {
	SourceID    *uuid.UUID   `db:"source_id" json:"source_id,omitempty"`
	SourceType  DocumentType `db:"source_type" json:"source_type,omitempty"`
	TargetID    *uuid.UUID   `db:"target_id" json:"target_id,omitempty"`
	TargetType  DocumentType `db:"target_type" json:"target_type,omitempty"`
	Converted   bool         `db:"converted" json:"converted"`
	ConvertedAt *time.Time   `db:"converted_at" json:"converted_at,omitempty"`
	ConvertedBy string       `db:"converted_by" json:"converted_by,omitempty"`
}

// PaymentEntry is an append-only payment history record. Amount is signed;
// cancellation appends a negative reversal entry. Entries are never mutated.
type PaymentEntry struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	DocumentID  uuid.UUID       `db:"document_id" json:"document_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Method      string          `db:"method" json:"method"`
	Reference   string          `db:"reference" json:"reference"`
	PaymentDate time.Time       `db:"payment_date" json:"payment_date"`
	DueDate     *time.Time      `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
}

// Document is the shared core of sales invoices, sales orders, purchase
// invoices, and purchase orders. It exclusively owns its line items and
// payment history; the party and company are foreign-key references.
// Version supports optimistic concurrency on payment and conversion writes.
type Document struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	CompanyID       uuid.UUID      `db:"company_id" json:"company_id"`
	PartyID         uuid.UUID      `db:"party_id" json:"party_id"`
	Type            DocumentType   `db:"doc_type" json:"type"`
	Number          string         `db:"number" json:"number"`
	NumberFallback  bool           `db:"number_fallback" json:"number_fallback"`
	Date            time.Time      `db:"doc_date" json:"date"`
	Status          DocumentStatus `db:"status" json:"status"`
	GSTEnabled      bool           `db:"gst_enabled" json:"gst_enabled"`
	RoundOffEnabled bool           `db:"round_off_enabled" json:"round_off_enabled"`
	Notes           string         `db:"notes" json:"notes"`
	CancelReason    string         `db:"cancel_reason" json:"cancel_reason,omitempty"`

	Totals     Totals         `json:"totals"`
	Payment    PaymentInfo    `json:"payment"`
	Conversion ConversionLink `json:"conversion"`

	Items          []LineItem     `db:"-" json:"items"`
	PaymentHistory []PaymentEntry `db:"-" json:"payment_history"`

	CreatedBy string    `db:"created_by" json:"created_by"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
