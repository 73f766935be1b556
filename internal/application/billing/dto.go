package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/billing"
	"github.com/verone/backend/internal/domain/shared"
)

// LineRequest is one custom priced line supplied at creation time.
// Decimal values cross the API as strings.
type LineRequest struct {
	Title     string `json:"title" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
	TaxRate   string `json:"tax_rate" binding:"required"`
}

func (r LineRequest) toLine(source billing.LineSource) (billing.PricedLine, error) {
	quantity, err := decimal.NewFromString(r.Quantity)
	if err != nil {
		return billing.PricedLine{}, shared.NewDomainError("INVALID_DECIMAL", "Invalid quantity: "+r.Quantity)
	}
	unitPrice, err := decimal.NewFromString(r.UnitPrice)
	if err != nil {
		return billing.PricedLine{}, shared.NewDomainError("INVALID_DECIMAL", "Invalid unit price: "+r.UnitPrice)
	}
	taxRate, err := decimal.NewFromString(r.TaxRate)
	if err != nil {
		return billing.PricedLine{}, shared.NewDomainError("INVALID_DECIMAL", "Invalid tax rate: "+r.TaxRate)
	}
	return billing.NewPricedLine(source, r.Title, quantity, unitPrice, taxRate)
}

// CreateFromOrderRequest creates an invoice or quote from a sales order
type CreateFromOrderRequest struct {
	OrderID     uuid.UUID     `json:"order_id" binding:"required"`
	CustomLines []LineRequest `json:"custom_lines"`
	Notes       string        `json:"notes"`
}

// CreateDocumentRequest creates a standalone document from custom lines
type CreateDocumentRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	Lines      []LineRequest `json:"lines"`
	Notes      string        `json:"notes"`
}

// ImportDocumentRequest registers a document pulled from the external
// accounting ledger, keeping its external number
type ImportDocumentRequest struct {
	ExternalNumber string        `json:"external_number" binding:"required"`
	CustomerID     uuid.UUID     `json:"customer_id" binding:"required"`
	Lines          []LineRequest `json:"lines"`
	Notes          string        `json:"notes"`
}

// DocumentListFilter narrows document listings
type DocumentListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Type       *billing.DocumentType
	Status     *billing.DocumentStatus
	CustomerID *uuid.UUID
}

// LineResponse is one priced line in a document response
type LineResponse struct {
	Source           string `json:"source"`
	Title            string `json:"title"`
	Quantity         string `json:"quantity"`
	UnitPriceExclTax string `json:"unit_price_excl_tax"`
	TaxRate          string `json:"tax_rate"`
	AmountExclTax    string `json:"amount_excl_tax"`
}

// DocumentResponse is the API representation of a financial document
type DocumentResponse struct {
	ID             uuid.UUID         `json:"id"`
	DocumentNumber string            `json:"document_number"`
	Type           string            `json:"type"`
	Status         string            `json:"status"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	SourceOrderID  *uuid.UUID        `json:"source_order_id,omitempty"`
	SourceQuoteID  *uuid.UUID        `json:"source_quote_id,omitempty"`
	Currency       string            `json:"currency"`
	Lines          []LineResponse    `json:"lines"`
	TotalExclTax   string            `json:"total_excl_tax"`
	TotalTax       string            `json:"total_tax"`
	TotalInclTax   string            `json:"total_incl_tax"`
	TaxByRate      map[string]string `json:"tax_by_rate"`
	IssuedAt       *time.Time        `json:"issued_at,omitempty"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToDocumentResponse converts a domain document to its API representation
func ToDocumentResponse(doc *billing.FinancialDocument) DocumentResponse {
	lines := make([]LineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = LineResponse{
			Source:           string(line.Source),
			Title:            line.Title,
			Quantity:         line.Quantity.String(),
			UnitPriceExclTax: line.UnitPriceExclTax.String(),
			TaxRate:          line.TaxRate.String(),
			AmountExclTax:    line.ExtendedExclTax().String(),
		}
	}

	taxByRate := make(map[string]string, len(doc.TaxByRate))
	for rate, amount := range doc.TaxByRate {
		taxByRate[rate] = amount.String()
	}

	return DocumentResponse{
		ID:             doc.ID,
		DocumentNumber: doc.DocumentNumber,
		Type:           string(doc.Type),
		Status:         string(doc.Status),
		CustomerID:     doc.CustomerID,
		SourceOrderID:  doc.SourceOrderID,
		SourceQuoteID:  doc.SourceQuoteID,
		Currency:       string(doc.Currency),
		Lines:          lines,
		TotalExclTax:   doc.TotalExclTax.String(),
		TotalTax:       doc.TotalTax.String(),
		TotalInclTax:   doc.TotalInclTax.String(),
		TaxByRate:      taxByRate,
		IssuedAt:       doc.IssuedAt,
		SentAt:         doc.SentAt,
		PaidAt:         doc.PaidAt,
		Notes:          doc.Notes,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
