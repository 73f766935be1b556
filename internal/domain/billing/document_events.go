package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeFinancialDocument = "FinancialDocument"

// Event type constants
const (
	EventTypeDocumentCreated       = "billing.document.created"
	EventTypeDocumentStatusChanged = "billing.document.status_changed"
	EventTypeDocumentFinalized     = "billing.document.finalized"
	EventTypeDocumentPaid          = "billing.document.paid"
	EventTypeQuoteConverted        = "billing.quote.converted"
)

// DocumentCreatedEvent is raised when a document draft is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType `json:"document_type"`
	DraftNumber  string       `json:"draft_number"`
}

// NewDocumentCreatedEvent creates a document created event
func NewDocumentCreatedEvent(documentID uuid.UUID, docType DocumentType, draftNumber string) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeFinancialDocument, documentID),
		DocumentType:    docType,
		DraftNumber:     draftNumber,
	}
}

// EventType returns the event type
func (e *DocumentCreatedEvent) EventType() string {
	return EventTypeDocumentCreated
}

// DocumentStatusChangedEvent is raised on every lifecycle move
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType   `json:"document_type"`
	FromStatus   DocumentStatus `json:"from_status"`
	ToStatus     DocumentStatus `json:"to_status"`
}

// NewDocumentStatusChangedEvent creates a status changed event
func NewDocumentStatusChangedEvent(documentID uuid.UUID, docType DocumentType, from, to DocumentStatus) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentStatusChanged, AggregateTypeFinancialDocument, documentID),
		DocumentType:    docType,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// EventType returns the event type
func (e *DocumentStatusChangedEvent) EventType() string {
	return EventTypeDocumentStatusChanged
}

// DocumentFinalizedEvent is raised when a document receives its permanent number
type DocumentFinalizedEvent struct {
	shared.BaseDomainEvent
	DocumentType   DocumentType    `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	TotalInclTax   decimal.Decimal `json:"total_incl_tax"`
}

// NewDocumentFinalizedEvent creates a document finalized event
func NewDocumentFinalizedEvent(documentID uuid.UUID, docType DocumentType, number string, totalInclTax decimal.Decimal) *DocumentFinalizedEvent {
	return &DocumentFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentFinalized, AggregateTypeFinancialDocument, documentID),
		DocumentType:    docType,
		DocumentNumber:  number,
		TotalInclTax:    totalInclTax,
	}
}

// EventType returns the event type
func (e *DocumentFinalizedEvent) EventType() string {
	return EventTypeDocumentFinalized
}

// DocumentPaidEvent is raised when an invoice is fully paid
type DocumentPaidEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string          `json:"document_number"`
	TotalInclTax   decimal.Decimal `json:"total_incl_tax"`
}

// NewDocumentPaidEvent creates a document paid event
func NewDocumentPaidEvent(documentID uuid.UUID, number string, totalInclTax decimal.Decimal) *DocumentPaidEvent {
	return &DocumentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaid, AggregateTypeFinancialDocument, documentID),
		DocumentNumber:  number,
		TotalInclTax:    totalInclTax,
	}
}

// EventType returns the event type
func (e *DocumentPaidEvent) EventType() string {
	return EventTypeDocumentPaid
}

// QuoteConvertedEvent is raised on the quote when it becomes an invoice
type QuoteConvertedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// NewQuoteConvertedEvent creates a quote converted event
func NewQuoteConvertedEvent(quoteID, invoiceID uuid.UUID) *QuoteConvertedEvent {
	return &QuoteConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteConverted, AggregateTypeFinancialDocument, quoteID),
		InvoiceID:       invoiceID,
	}
}

// EventType returns the event type
func (e *QuoteConvertedEvent) EventType() string {
	return EventTypeQuoteConverted
}
