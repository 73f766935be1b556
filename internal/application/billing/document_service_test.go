package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/verone/backend/internal/domain/billing"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
	"github.com/verone/backend/internal/domain/trade"
)

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FinancialDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, number string) (*billing.FinancialDocument, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, filter billing.DocumentFilter) (*shared.Paginated[billing.FinancialDocument], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.FinancialDocument]), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *billing.FinancialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateStatusFrom(ctx context.Context, doc *billing.FinancialDocument, expectedStatus billing.DocumentStatus) error {
	args := m.Called(ctx, doc, expectedStatus)
	return args.Error(0)
}

// MockSalesOrderRepository is a mock implementation of SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.SalesOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockNumberGenerator is a mock implementation of DocumentNumberGenerator
type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) NextDraftNumber(ctx context.Context, docType billing.DocumentType) (string, error) {
	args := m.Called(ctx, docType)
	return args.String(0), args.Error(1)
}

func (m *MockNumberGenerator) NextFinalNumber(ctx context.Context, docType billing.DocumentType) (string, error) {
	args := m.Called(ctx, docType)
	return args.String(0), args.Error(1)
}

func newService(t *testing.T) (*DocumentService, *MockDocumentRepository, *MockSalesOrderRepository, *MockNumberGenerator) {
	t.Helper()
	docRepo := new(MockDocumentRepository)
	orderRepo := new(MockSalesOrderRepository)
	numbers := new(MockNumberGenerator)
	return NewDocumentService(docRepo, orderRepo, numbers), docRepo, orderRepo, numbers
}

func validatedOrder(t *testing.T) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder("SO-2026-00001", uuid.New())
	require.NoError(t, err)

	price, err := valueobject.NewMoneyEURFromString("15")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", decimal.NewFromInt(10), price, decimal.RequireFromString("0.2"))
	require.NoError(t, err)

	shipping, err := valueobject.NewMoneyEURFromString("50")
	require.NoError(t, err)
	require.NoError(t, order.SetServiceFees(shipping, valueobject.ZeroEUR(), valueobject.ZeroEUR(), decimal.RequireFromString("0.2")))

	require.NoError(t, order.Validate())
	return order
}

func TestCreateInvoiceFromOrder(t *testing.T) {
	t.Run("builds a draft over items fees and custom lines", func(t *testing.T) {
		service, docRepo, orderRepo, numbers := newService(t)
		order := validatedOrder(t)

		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		numbers.On("NextDraftNumber", mock.Anything, billing.DocumentTypeInvoice).Return("DRAFT-2026-00001", nil)
		docRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FinancialDocument")).Return(nil)

		resp, err := service.CreateInvoiceFromOrder(context.Background(), CreateFromOrderRequest{
			OrderID: order.ID,
			CustomLines: []LineRequest{
				{Title: "Setup", Quantity: "1", UnitPrice: "10", TaxRate: "0.2"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, "DRAFT-2026-00001", resp.DocumentNumber)
		// 150 items + 50 shipping + 10 custom
		assert.Equal(t, "210", resp.TotalExclTax)
		assert.Equal(t, "42", resp.TotalTax)
		assert.Equal(t, "252", resp.TotalInclTax)
		assert.Len(t, resp.Lines, 3)
		require.NotNil(t, resp.SourceOrderID)
		assert.Equal(t, order.ID, *resp.SourceOrderID)
		docRepo.AssertExpectations(t)
	})

	t.Run("draft order is not eligible", func(t *testing.T) {
		service, docRepo, orderRepo, _ := newService(t)
		order, err := trade.NewSalesOrder("SO-2026-00002", uuid.New())
		require.NoError(t, err)

		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err = service.CreateInvoiceFromOrder(context.Background(), CreateFromOrderRequest{OrderID: order.ID})

		assert.ErrorContains(t, err, "ORDER_NOT_ELIGIBLE")
		docRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing order propagates not found", func(t *testing.T) {
		service, _, orderRepo, _ := newService(t)
		orderID := uuid.New()

		orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		_, err := service.CreateInvoiceFromOrder(context.Background(), CreateFromOrderRequest{OrderID: orderID})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid custom line decimal rejected", func(t *testing.T) {
		service, _, orderRepo, _ := newService(t)
		order := validatedOrder(t)

		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := service.CreateInvoiceFromOrder(context.Background(), CreateFromOrderRequest{
			OrderID:     order.ID,
			CustomLines: []LineRequest{{Title: "Bad", Quantity: "abc", UnitPrice: "1", TaxRate: "0.2"}},
		})

		assert.ErrorContains(t, err, "INVALID_DECIMAL")
	})
}

func TestCreateQuoteFromOrder(t *testing.T) {
	service, docRepo, orderRepo, numbers := newService(t)
	order := validatedOrder(t)

	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	numbers.On("NextDraftNumber", mock.Anything, billing.DocumentTypeQuote).Return("DRAFT-2026-00002", nil)
	docRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FinancialDocument")).Return(nil)

	resp, err := service.CreateQuoteFromOrder(context.Background(), CreateFromOrderRequest{OrderID: order.ID})

	require.NoError(t, err)
	assert.Equal(t, "QUOTE", resp.Type)
	assert.Equal(t, "DRAFT", resp.Status)
}

func TestDocumentTransitions(t *testing.T) {
	t.Run("finalize assigns the permanent number conditionally", func(t *testing.T) {
		service, docRepo, _, numbers := newService(t)
		doc, err := billing.NewFinancialDocument(billing.DocumentTypeQuote, "DRAFT-2026-00003", uuid.New(), []billing.PricedLine{
			mustServiceLine(t),
		})
		require.NoError(t, err)

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
		numbers.On("NextFinalNumber", mock.Anything, billing.DocumentTypeQuote).Return("DEV-2026-00001", nil)
		docRepo.On("UpdateStatusFrom", mock.Anything, doc, billing.DocumentStatusDraft).Return(nil)

		resp, err := service.Finalize(context.Background(), doc.ID)

		require.NoError(t, err)
		assert.Equal(t, "FINALIZED", resp.Status)
		assert.Equal(t, "DEV-2026-00001", resp.DocumentNumber)
		docRepo.AssertExpectations(t)
	})

	t.Run("lost conditional update surfaces conflict", func(t *testing.T) {
		service, docRepo, _, numbers := newService(t)
		doc, err := billing.NewFinancialDocument(billing.DocumentTypeQuote, "DRAFT-2026-00004", uuid.New(), []billing.PricedLine{
			mustServiceLine(t),
		})
		require.NoError(t, err)

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
		numbers.On("NextFinalNumber", mock.Anything, billing.DocumentTypeQuote).Return("DEV-2026-00002", nil)
		docRepo.On("UpdateStatusFrom", mock.Anything, doc, billing.DocumentStatusDraft).Return(shared.ErrConcurrencyConflict)

		_, err = service.Finalize(context.Background(), doc.ID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("illegal move never reaches the repository", func(t *testing.T) {
		service, docRepo, _, _ := newService(t)
		doc, err := billing.NewFinancialDocument(billing.DocumentTypeInvoice, "DRAFT-2026-00005", uuid.New(), []billing.PricedLine{
			mustServiceLine(t),
		})
		require.NoError(t, err)

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)

		_, err = service.MarkPaid(context.Background(), doc.ID)

		var transErr *billing.InvalidTransitionError
		assert.ErrorAs(t, err, &transErr)
		docRepo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestConvertQuote(t *testing.T) {
	t.Run("finalized quote becomes a fresh invoice draft", func(t *testing.T) {
		service, docRepo, _, numbers := newService(t)
		quote, err := billing.NewFinancialDocument(billing.DocumentTypeQuote, "DRAFT-2026-00006", uuid.New(), []billing.PricedLine{
			mustServiceLine(t),
		})
		require.NoError(t, err)
		require.NoError(t, quote.Finalize("DEV-2026-00003"))

		docRepo.On("FindByID", mock.Anything, quote.ID).Return(quote, nil)
		numbers.On("NextDraftNumber", mock.Anything, billing.DocumentTypeInvoice).Return("DRAFT-2026-00007", nil)
		docRepo.On("UpdateStatusFrom", mock.Anything, quote, billing.DocumentStatusFinalized).Return(nil)
		docRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FinancialDocument")).Return(nil)

		resp, err := service.ConvertQuote(context.Background(), quote.ID)

		require.NoError(t, err)
		assert.Equal(t, "INVOICE", resp.Type)
		assert.Equal(t, "DRAFT", resp.Status)
		require.NotNil(t, resp.SourceQuoteID)
		assert.Equal(t, quote.ID, *resp.SourceQuoteID)
		docRepo.AssertExpectations(t)
	})

	t.Run("unfinalized quote cannot convert", func(t *testing.T) {
		service, docRepo, _, numbers := newService(t)
		quote, err := billing.NewFinancialDocument(billing.DocumentTypeQuote, "DRAFT-2026-00008", uuid.New(), []billing.PricedLine{
			mustServiceLine(t),
		})
		require.NoError(t, err)

		docRepo.On("FindByID", mock.Anything, quote.ID).Return(quote, nil)
		numbers.On("NextDraftNumber", mock.Anything, billing.DocumentTypeInvoice).Return("DRAFT-2026-00009", nil)

		_, err = service.ConvertQuote(context.Background(), quote.ID)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		docRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCreateDocument(t *testing.T) {
	t.Run("standalone draft from custom lines", func(t *testing.T) {
		service, docRepo, _, numbers := newService(t)
		customerID := uuid.New()

		numbers.On("NextDraftNumber", mock.Anything, billing.DocumentTypeInvoice).Return("DRAFT-2026-00010", nil)
		docRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FinancialDocument")).Return(nil)

		resp, err := service.CreateDocument(context.Background(), billing.DocumentTypeInvoice, CreateDocumentRequest{
			CustomerID: customerID,
			Lines: []LineRequest{
				{Title: "Consulting", Quantity: "2", UnitPrice: "500", TaxRate: "0.2"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "1000", resp.TotalExclTax)
		assert.Equal(t, "1200", resp.TotalInclTax)
	})

	t.Run("number generation failure propagates", func(t *testing.T) {
		service, _, _, numbers := newService(t)

		numbers.On("NextDraftNumber", mock.Anything, billing.DocumentTypeInvoice).Return("", errors.New("sequence unavailable"))

		_, err := service.CreateDocument(context.Background(), billing.DocumentTypeInvoice, CreateDocumentRequest{CustomerID: uuid.New()})

		assert.ErrorContains(t, err, "sequence unavailable")
	})
}

func TestImportDocument(t *testing.T) {
	t.Run("ledger import keeps its external number and enters synchronized", func(t *testing.T) {
		service, docRepo, _, numbers := newService(t)
		customerID := uuid.New()

		docRepo.On("Save", mock.Anything, mock.MatchedBy(func(doc *billing.FinancialDocument) bool {
			return doc.Status == billing.DocumentStatusSynchronized && doc.DocumentNumber == "EXT-2026-0042"
		})).Return(nil)

		resp, err := service.ImportDocument(context.Background(), billing.DocumentTypeInvoice, ImportDocumentRequest{
			ExternalNumber: "EXT-2026-0042",
			CustomerID:     customerID,
			Lines: []LineRequest{
				{Title: "Imported service", Quantity: "1", UnitPrice: "200", TaxRate: "0.2"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "SYNCHRONIZED", resp.Status)
		assert.Equal(t, "EXT-2026-0042", resp.DocumentNumber)
		assert.Equal(t, "240", resp.TotalInclTax)
		numbers.AssertNotCalled(t, "NextDraftNumber", mock.Anything, mock.Anything)
		docRepo.AssertExpectations(t)
	})

	t.Run("empty external number rejected", func(t *testing.T) {
		service, docRepo, _, _ := newService(t)

		_, err := service.ImportDocument(context.Background(), billing.DocumentTypeInvoice, ImportDocumentRequest{
			CustomerID: uuid.New(),
		})

		assert.ErrorContains(t, err, "INVALID_DOCUMENT_NUMBER")
		docRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func mustServiceLine(t *testing.T) billing.PricedLine {
	t.Helper()
	line, err := billing.NewPricedLine(billing.LineSourceCustom, "Service", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.RequireFromString("0.2"))
	require.NoError(t, err)
	return line
}
