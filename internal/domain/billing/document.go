package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
)

// DocumentType distinguishes invoices from quotes
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "INVOICE"
	DocumentTypeQuote   DocumentType = "QUOTE"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeQuote
}

// DocumentStatus represents the lifecycle state of a financial document
type DocumentStatus string

const (
	DocumentStatusDraft          DocumentStatus = "DRAFT"
	DocumentStatusSynchronized   DocumentStatus = "SYNCHRONIZED" // imported from the external ledger, validates like a draft
	DocumentStatusDraftValidated DocumentStatus = "DRAFT_VALIDATED"
	DocumentStatusFinalized      DocumentStatus = "FINALIZED"
	DocumentStatusSent           DocumentStatus = "SENT"
	DocumentStatusPaid           DocumentStatus = "PAID"
	DocumentStatusConverted      DocumentStatus = "CONVERTED" // quote turned into an invoice
	DocumentStatusCancelled      DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusSynchronized, DocumentStatusDraftValidated,
		DocumentStatusFinalized, DocumentStatusSent, DocumentStatusPaid,
		DocumentStatusConverted, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states a document can never leave
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case DocumentStatusPaid, DocumentStatusConverted, DocumentStatusCancelled:
		return true
	}
	return false
}

// invoiceTransitions and quoteTransitions encode the one-way lifecycle per
// document type. Cancellation is handled separately: any non-terminal state
// except PAID may cancel.
var invoiceTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:          {DocumentStatusDraftValidated},
	DocumentStatusSynchronized:   {DocumentStatusDraftValidated},
	DocumentStatusDraftValidated: {DocumentStatusFinalized},
	DocumentStatusFinalized:      {DocumentStatusSent},
	DocumentStatusSent:           {DocumentStatusPaid},
}

var quoteTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:     {DocumentStatusFinalized},
	DocumentStatusFinalized: {DocumentStatusSent, DocumentStatusConverted},
	DocumentStatusSent:      {DocumentStatusConverted},
}

// InvalidTransitionError reports an illegal lifecycle move. It satisfies
// errors.Is against shared.ErrInvalidState so callers can match the class.
type InvalidTransitionError struct {
	DocType   DocumentType
	From      DocumentStatus
	Attempted DocumentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("INVALID_TRANSITION: %s cannot move from %s to %s", e.DocType, e.From, e.Attempted)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == shared.ErrInvalidState
}

// FinancialDocument is the invoice/quote aggregate. Amounts are always
// recomputed from lines via Aggregate; there is no amount setter. Once
// finalized the lines and amounts are frozen.
type FinancialDocument struct {
	shared.BaseAggregateRoot
	DocumentNumber string          `gorm:"uniqueIndex;size:50;not null" json:"document_number"`
	Type           DocumentType    `gorm:"size:20;not null;index" json:"type"`
	Status         DocumentStatus  `gorm:"size:30;not null;index" json:"status"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;index" json:"customer_id"`
	SourceOrderID  *uuid.UUID      `gorm:"type:uuid;index" json:"source_order_id,omitempty"`
	SourceQuoteID  *uuid.UUID      `gorm:"type:uuid;index" json:"source_quote_id,omitempty"`
	Currency       valueobject.Currency `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Lines          PricedLines     `gorm:"type:jsonb" json:"lines"`
	TotalExclTax   decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"total_excl_tax"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"total_tax"`
	TotalInclTax   decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"total_incl_tax"`
	TaxByRate      RateAmounts     `gorm:"type:jsonb" json:"tax_by_rate"`
	IssuedAt       *time.Time      `json:"issued_at,omitempty"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name
func (FinancialDocument) TableName() string {
	return "financial_documents"
}

// NewFinancialDocument creates a document in draft with a provisional number.
// Lines are aggregated immediately; documents are never created finalized.
func NewFinancialDocument(docType DocumentType, draftNumber string, customerID uuid.UUID, lines []PricedLine) (*FinancialDocument, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unknown document type")
	}
	if draftNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Draft number cannot be empty")
	}

	doc := &FinancialDocument{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocumentNumber:    draftNumber,
		Type:              docType,
		Status:            DocumentStatusDraft,
		CustomerID:        customerID,
		Currency:          valueobject.EUR,
		Lines:             PricedLines(lines),
	}
	doc.recomputeAmounts()

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc.ID, docType, draftNumber))
	return doc, nil
}

// NewSynchronizedDocument creates a document imported from the external
// ledger. It enters in SYNCHRONIZED and validates like a draft.
func NewSynchronizedDocument(docType DocumentType, externalNumber string, customerID uuid.UUID, lines []PricedLine) (*FinancialDocument, error) {
	doc, err := NewFinancialDocument(docType, externalNumber, customerID, lines)
	if err != nil {
		return nil, err
	}
	doc.Status = DocumentStatusSynchronized
	return doc, nil
}

func (d *FinancialDocument) transitions() map[DocumentStatus][]DocumentStatus {
	if d.Type == DocumentTypeQuote {
		return quoteTransitions
	}
	return invoiceTransitions
}

// CanTransitionTo checks whether a lifecycle move is legal for this document
func (d *FinancialDocument) CanTransitionTo(target DocumentStatus) bool {
	if target == DocumentStatusCancelled {
		return !d.Status.IsTerminal() && d.Status != DocumentStatusPaid
	}
	for _, allowed := range d.transitions()[d.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// transitionTo applies a legal move or fails without mutating anything
func (d *FinancialDocument) transitionTo(target DocumentStatus) error {
	if !d.CanTransitionTo(target) {
		return &InvalidTransitionError{DocType: d.Type, From: d.Status, Attempted: target}
	}
	from := d.Status
	d.Status = target
	d.Touch()
	d.AddDomainEvent(NewDocumentStatusChangedEvent(d.ID, d.Type, from, target))
	return nil
}

// IsEditable returns true while lines may still change
func (d *FinancialDocument) IsEditable() bool {
	switch d.Status {
	case DocumentStatusDraft, DocumentStatusSynchronized, DocumentStatusDraftValidated:
		return true
	}
	return false
}

// AddLine appends a priced line and recomputes amounts. Only legal before
// finalization.
func (d *FinancialDocument) AddLine(line PricedLine) error {
	if !d.IsEditable() {
		return shared.NewDomainError("DOCUMENT_FROZEN", "Cannot modify lines of a finalized document")
	}
	d.Lines = append(d.Lines, line)
	d.recomputeAmounts()
	d.Touch()
	return nil
}

// ValidateDraft moves an invoice draft (or synchronized import) to
// DRAFT_VALIDATED. Quotes have no validation step.
func (d *FinancialDocument) ValidateDraft() error {
	if d.Type != DocumentTypeInvoice {
		return &InvalidTransitionError{DocType: d.Type, From: d.Status, Attempted: DocumentStatusDraftValidated}
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot validate a document without lines")
	}
	return d.transitionTo(DocumentStatusDraftValidated)
}

// Finalize freezes the document and assigns its permanent number. The
// provisional draft number is discarded.
func (d *FinancialDocument) Finalize(finalNumber string) error {
	if finalNumber == "" {
		return shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Final number cannot be empty")
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot finalize a document without lines")
	}
	if err := d.transitionTo(DocumentStatusFinalized); err != nil {
		return err
	}
	d.DocumentNumber = finalNumber
	now := time.Now()
	d.IssuedAt = &now
	d.AddDomainEvent(NewDocumentFinalizedEvent(d.ID, d.Type, finalNumber, d.TotalInclTax))
	return nil
}

// Send marks a finalized document as sent to the customer. Sending a quote
// is optional; a finalized quote may convert directly.
func (d *FinancialDocument) Send() error {
	if err := d.transitionTo(DocumentStatusSent); err != nil {
		return err
	}
	now := time.Now()
	d.SentAt = &now
	return nil
}

// MarkPaid records full payment of a sent invoice
func (d *FinancialDocument) MarkPaid() error {
	if err := d.transitionTo(DocumentStatusPaid); err != nil {
		return err
	}
	now := time.Now()
	d.PaidAt = &now
	d.AddDomainEvent(NewDocumentPaidEvent(d.ID, d.DocumentNumber, d.TotalInclTax))
	return nil
}

// Cancel voids the document. Legal from any non-terminal state except PAID.
func (d *FinancialDocument) Cancel() error {
	return d.transitionTo(DocumentStatusCancelled)
}

// ConvertToInvoice turns a finalized quote into a fresh invoice draft. The
// invoice re-runs the aggregation over the quote's lines; the quote is left
// untouched except for its status.
func (d *FinancialDocument) ConvertToInvoice(invoiceDraftNumber string) (*FinancialDocument, error) {
	if d.Type != DocumentTypeQuote {
		return nil, shared.NewDomainError("NOT_A_QUOTE", "Only quotes can be converted to invoices")
	}
	if err := d.transitionTo(DocumentStatusConverted); err != nil {
		return nil, err
	}

	lines := make([]PricedLine, len(d.Lines))
	copy(lines, d.Lines)

	invoice, err := NewFinancialDocument(DocumentTypeInvoice, invoiceDraftNumber, d.CustomerID, lines)
	if err != nil {
		return nil, err
	}
	quoteID := d.ID
	invoice.SourceQuoteID = &quoteID
	invoice.SourceOrderID = d.SourceOrderID

	d.AddDomainEvent(NewQuoteConvertedEvent(d.ID, invoice.ID))
	return invoice, nil
}

// recomputeAmounts re-runs the tax aggregation over the current lines
func (d *FinancialDocument) recomputeAmounts() {
	amounts := Aggregate(d.Lines)
	d.TotalExclTax = amounts.TotalExclTax
	d.TotalTax = amounts.TotalTax
	d.TotalInclTax = amounts.TotalInclTax
	d.TaxByRate = amounts.TaxByRate
}

// Amounts returns the current aggregated amounts
func (d *FinancialDocument) Amounts() DocumentAmounts {
	return DocumentAmounts{
		TotalExclTax: d.TotalExclTax,
		TotalTax:     d.TotalTax,
		TaxByRate:    d.TaxByRate,
		TotalInclTax: d.TotalInclTax,
	}
}
