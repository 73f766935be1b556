package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/billing"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/trade"
)

// DocumentService drives the financial document lifecycle
type DocumentService struct {
	docRepo        billing.DocumentRepository
	orderRepo      trade.SalesOrderRepository
	numbers        billing.DocumentNumberGenerator
	eventPublisher shared.EventPublisher
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(docRepo billing.DocumentRepository, orderRepo trade.SalesOrderRepository, numbers billing.DocumentNumberGenerator) *DocumentService {
	return &DocumentService{
		docRepo:   docRepo,
		orderRepo: orderRepo,
		numbers:   numbers,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateInvoiceFromOrder builds an invoice draft over a validated order's
// items, service fees and any extra custom lines
func (s *DocumentService) CreateInvoiceFromOrder(ctx context.Context, req CreateFromOrderRequest) (*DocumentResponse, error) {
	return s.createFromOrder(ctx, billing.DocumentTypeInvoice, req)
}

// CreateQuoteFromOrder builds a quote draft from a validated order
func (s *DocumentService) CreateQuoteFromOrder(ctx context.Context, req CreateFromOrderRequest) (*DocumentResponse, error) {
	return s.createFromOrder(ctx, billing.DocumentTypeQuote, req)
}

func (s *DocumentService) createFromOrder(ctx context.Context, docType billing.DocumentType, req CreateFromOrderRequest) (*DocumentResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.IsBillable() {
		return nil, shared.NewDomainError("ORDER_NOT_ELIGIBLE", "Order must be validated before it can be billed")
	}

	lines, err := orderLines(order, req.CustomLines)
	if err != nil {
		return nil, err
	}

	draftNumber, err := s.numbers.NextDraftNumber(ctx, docType)
	if err != nil {
		return nil, err
	}

	doc, err := billing.NewFinancialDocument(docType, draftNumber, order.CustomerID, lines)
	if err != nil {
		return nil, err
	}
	orderID := order.ID
	doc.SourceOrderID = &orderID
	doc.Notes = req.Notes

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// orderLines maps an order's items and fees into priced lines, then appends
// the request's custom lines
func orderLines(order *trade.SalesOrder, custom []LineRequest) ([]billing.PricedLine, error) {
	lines := make([]billing.PricedLine, 0, len(order.Items)+3+len(custom))

	for _, item := range order.Items {
		line, err := billing.NewPricedLine(billing.LineSourceOrderItem, item.ProductName, item.Quantity, item.UnitPriceExclTax, item.TaxRate)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	one := decimal.NewFromInt(1)
	fees := []struct {
		title  string
		amount decimal.Decimal
	}{
		{"Shipping", order.ShippingCostExclTax},
		{"Handling", order.HandlingCostExclTax},
		{"Insurance", order.InsuranceCostExclTax},
	}
	for _, fee := range fees {
		if fee.amount.IsZero() {
			continue
		}
		line, err := billing.NewPricedLine(billing.LineSourceServiceFee, fee.title, one, fee.amount, order.FeesTaxRate)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	for _, req := range custom {
		line, err := req.toLine(billing.LineSourceCustom)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// CreateDocument builds a standalone draft from custom lines only
func (s *DocumentService) CreateDocument(ctx context.Context, docType billing.DocumentType, req CreateDocumentRequest) (*DocumentResponse, error) {
	lines := make([]billing.PricedLine, 0, len(req.Lines))
	for _, lr := range req.Lines {
		line, err := lr.toLine(billing.LineSourceCustom)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	draftNumber, err := s.numbers.NextDraftNumber(ctx, docType)
	if err != nil {
		return nil, err
	}

	doc, err := billing.NewFinancialDocument(docType, draftNumber, req.CustomerID, lines)
	if err != nil {
		return nil, err
	}
	doc.Notes = req.Notes

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// ImportDocument registers an invoice pulled from the external accounting
// ledger. The document keeps its external number, enters in SYNCHRONIZED
// and follows the invoice lifecycle from there.
func (s *DocumentService) ImportDocument(ctx context.Context, docType billing.DocumentType, req ImportDocumentRequest) (*DocumentResponse, error) {
	lines := make([]billing.PricedLine, 0, len(req.Lines))
	for _, lr := range req.Lines {
		line, err := lr.toLine(billing.LineSourceCustom)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	doc, err := billing.NewSynchronizedDocument(docType, req.ExternalNumber, req.CustomerID, lines)
	if err != nil {
		return nil, err
	}
	doc.Notes = req.Notes

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByID retrieves a document by ID
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByNumber retrieves a document by its number
func (s *DocumentService) GetByNumber(ctx context.Context, number string) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// List retrieves documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, filter DocumentListFilter) (*shared.Paginated[DocumentResponse], error) {
	domainFilter := billing.DocumentFilter{
		Filter:     shared.DefaultFilter(),
		Type:       filter.Type,
		Status:     filter.Status,
		CustomerID: filter.CustomerID,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	page, err := s.docRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]DocumentResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToDocumentResponse(&page.Items[i])
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// ValidateDraft moves an invoice draft to validated
func (s *DocumentService) ValidateDraft(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, func(doc *billing.FinancialDocument) error {
		return doc.ValidateDraft()
	})
}

// Finalize freezes a document and assigns its permanent number
func (s *DocumentService) Finalize(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, func(doc *billing.FinancialDocument) error {
		finalNumber, err := s.numbers.NextFinalNumber(ctx, doc.Type)
		if err != nil {
			return err
		}
		return doc.Finalize(finalNumber)
	})
}

// Send marks a finalized invoice as sent
func (s *DocumentService) Send(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, func(doc *billing.FinancialDocument) error {
		return doc.Send()
	})
}

// MarkPaid records payment of a sent invoice
func (s *DocumentService) MarkPaid(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, func(doc *billing.FinancialDocument) error {
		return doc.MarkPaid()
	})
}

// Cancel voids a document
func (s *DocumentService) Cancel(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, func(doc *billing.FinancialDocument) error {
		return doc.Cancel()
	})
}

// transition loads the document, applies the lifecycle move and persists it
// conditionally on the status it was loaded with, so two concurrent moves
// cannot both win.
func (s *DocumentService) transition(ctx context.Context, id uuid.UUID, move func(*billing.FinancialDocument) error) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	loadedStatus := doc.Status
	if err := move(doc); err != nil {
		return nil, err
	}

	if err := s.docRepo.UpdateStatusFrom(ctx, doc, loadedStatus); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// ConvertQuote turns a finalized quote into a fresh invoice draft
func (s *DocumentService) ConvertQuote(ctx context.Context, quoteID uuid.UUID) (*DocumentResponse, error) {
	quote, err := s.docRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	draftNumber, err := s.numbers.NextDraftNumber(ctx, billing.DocumentTypeInvoice)
	if err != nil {
		return nil, err
	}

	loadedStatus := quote.Status
	invoice, err := quote.ConvertToInvoice(draftNumber)
	if err != nil {
		return nil, err
	}

	if err := s.docRepo.UpdateStatusFrom(ctx, quote, loadedStatus); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, quote)
	s.publishEvents(ctx, invoice)

	response := ToDocumentResponse(invoice)
	return &response, nil
}

func (s *DocumentService) publishEvents(ctx context.Context, doc *billing.FinancialDocument) {
	if s.eventPublisher == nil {
		return
	}
	events := doc.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// publish failures are not fatal to the business operation
	_ = s.eventPublisher.Publish(ctx, events...)
	doc.ClearDomainEvents()
}
