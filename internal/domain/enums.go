package domain

// DocumentType identifies the four structurally identical document kinds.
type DocumentType string

const (
	DocTypeSale          DocumentType = "sale"
	DocTypeSalesOrder    DocumentType = "sales_order"
	DocTypePurchase      DocumentType = "purchase"
	DocTypePurchaseOrder DocumentType = "purchase_order"
)

// ValidDocumentTypes is the set of accepted document types.
var ValidDocumentTypes = map[DocumentType]bool{
	DocTypeSale:          true,
	DocTypeSalesOrder:    true,
	DocTypePurchase:      true,
	DocTypePurchaseOrder: true,
}

// numberPrefixes maps document type to its number prefix: [0] without GST, [1] with GST.
var numberPrefixes = map[DocumentType][2]string{
	DocTypeSale:          {"INV", "GST"},
	DocTypeSalesOrder:    {"SO", "SO-GST"},
	DocTypePurchase:      {"PUR", "PUR-GST"},
	DocTypePurchaseOrder: {"PO", "PO-GST"},
}

// NumberPrefix returns the document number prefix for a type and GST flag.
func NumberPrefix(t DocumentType, gstEnabled bool) string {
	p := numberPrefixes[t]
	if gstEnabled {
		return p[1]
	}
	return p[0]
}

// TaxMode declares whether the quoted price already contains tax.
type TaxMode string

const (
	TaxModeInclusive TaxMode = "inclusive"
	TaxModeExclusive TaxMode = "exclusive"
)

// NormalizeTaxMode maps legacy spellings from older clients onto the canonical
// TaxMode values. Orders historically sent gst_mode "include"/"exclude" and
// invoices sent tax_mode "with-tax"/"without-tax".
func NormalizeTaxMode(s string) (TaxMode, bool) {
	switch s {
	case "inclusive", "include", "with-tax":
		return TaxModeInclusive, true
	case "exclusive", "exclude", "without-tax", "":
		return TaxModeExclusive, true
	default:
		return "", false
	}
}

// DocumentStatus is the document lifecycle state.
type DocumentStatus string

const (
	DocStatusDraft     DocumentStatus = "draft"
	DocStatusCompleted DocumentStatus = "completed"
	DocStatusCancelled DocumentStatus = "cancelled"
)

// PaymentStatus is the payment state of a document. Overdue is derived and
// non-sticky: it applies while the due date has passed with a balance pending.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PartyKind distinguishes customers from suppliers in a company's directory.
type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer"
	PartyKindSupplier PartyKind = "supplier"
)

// StockReason tags a stock adjustment with the operation that caused it.
// The (reference, item, reason) triple is the idempotency key.
type StockReason string

const (
	StockReasonSale     StockReason = "sale"
	StockReasonPurchase StockReason = "purchase"
	StockReasonCancel   StockReason = "cancel"
)
