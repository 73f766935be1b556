package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
	"github.com/verone/backend/internal/domain/trade"
)

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

func newService(t *testing.T) (*SalesOrderService, *MockSalesOrderRepository) {
	t.Helper()
	repo := new(MockSalesOrderRepository)
	return NewSalesOrderService(repo), repo
}

func itemRequest() OrderItemRequest {
	return OrderItemRequest{
		ProductID:   uuid.New(),
		ProductName: "Oak shelf 120cm",
		Quantity:    "2",
		UnitPrice:   "149.90",
		TaxRate:     "0.20",
	}
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func moneyFromString(t *testing.T, value string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyEURFromString(value)
	require.NoError(t, err)
	return m
}

func draftOrder(t *testing.T) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder("SO-2026-00042", uuid.New())
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func TestSalesOrderService_Create(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	repo.On("GenerateOrderNumber", ctx).Return("SO-2026-00001", nil)
	repo.On("Save", ctx, mock.AnythingOfType("*trade.SalesOrder")).Return(nil)

	resp, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New(),
		Items:      []OrderItemRequest{itemRequest()},
	})

	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00001", resp.OrderNumber)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, "299.8", resp.TotalExclTax)
	repo.AssertExpectations(t)
}

func TestSalesOrderService_Create_InvalidQuantity(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	repo.On("GenerateOrderNumber", ctx).Return("SO-2026-00002", nil)

	item := itemRequest()
	item.Quantity = "two"
	_, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New(),
		Items:      []OrderItemRequest{item},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DECIMAL", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSalesOrderService_Create_NumberGenerationFails(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	repo.On("GenerateOrderNumber", ctx).Return("", errors.New("sequence unavailable"))

	_, err := service.Create(ctx, CreateOrderRequest{CustomerID: uuid.New()})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSalesOrderService_AddItem(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	order := draftOrder(t)

	repo.On("FindByID", ctx, order.ID).Return(order, nil)
	repo.On("Save", ctx, order).Return(nil)

	resp, err := service.AddItem(ctx, order.ID, itemRequest())

	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, "149.9", resp.Items[0].UnitPriceExclTax)
	repo.AssertExpectations(t)
}

func TestSalesOrderService_SetServiceFees(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	order := draftOrder(t)
	_, err := order.AddItem(uuid.New(), "Desk", decimalFromString(t, "1"), moneyFromString(t, "300.00"), decimalFromString(t, "0.20"))
	require.NoError(t, err)

	repo.On("FindByID", ctx, order.ID).Return(order, nil)
	repo.On("Save", ctx, order).Return(nil)

	resp, err := service.SetServiceFees(ctx, order.ID, ServiceFeesRequest{
		Shipping:  "25.00",
		Handling:  "5.00",
		Insurance: "3.50",
		TaxRate:   "0.20",
	})

	require.NoError(t, err)
	assert.Equal(t, "25", resp.ShippingCostExclTax)
	assert.Equal(t, "333.5", resp.TotalExclTax)
	repo.AssertExpectations(t)
}

func TestSalesOrderService_SetServiceFees_InvalidAmount(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	_, err := service.SetServiceFees(ctx, uuid.New(), ServiceFeesRequest{
		Shipping:  "free",
		Handling:  "0",
		Insurance: "0",
		TaxRate:   "0.20",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DECIMAL", domainErr.Code)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSalesOrderService_Validate(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	order := draftOrder(t)
	_, err := order.AddItem(uuid.New(), "Chair", decimalFromString(t, "4"), moneyFromString(t, "89.00"), decimalFromString(t, "0.20"))
	require.NoError(t, err)

	repo.On("FindByID", ctx, order.ID).Return(order, nil)
	repo.On("Save", ctx, order).Return(nil)

	resp, err := service.Validate(ctx, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "VALIDATED", resp.Status)
	assert.NotNil(t, resp.ValidatedAt)
	repo.AssertExpectations(t)
}

func TestSalesOrderService_Validate_EmptyOrder(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	order := draftOrder(t)

	repo.On("FindByID", ctx, order.ID).Return(order, nil)

	_, err := service.Validate(ctx, order.ID)

	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSalesOrderService_Lifecycle(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	order := draftOrder(t)
	_, err := order.AddItem(uuid.New(), "Table", decimalFromString(t, "1"), moneyFromString(t, "450.00"), decimalFromString(t, "0.20"))
	require.NoError(t, err)
	require.NoError(t, order.Validate())

	repo.On("FindByID", ctx, order.ID).Return(order, nil)
	repo.On("Save", ctx, order).Return(nil)

	resp, err := service.Ship(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", resp.Status)

	resp, err = service.Complete(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)
}

func TestSalesOrderService_Cancel_Completed(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	order := draftOrder(t)
	_, err := order.AddItem(uuid.New(), "Lamp", decimalFromString(t, "1"), moneyFromString(t, "60.00"), decimalFromString(t, "0.10"))
	require.NoError(t, err)
	require.NoError(t, order.Validate())
	require.NoError(t, order.Ship())
	require.NoError(t, order.Complete())

	repo.On("FindByID", ctx, order.ID).Return(order, nil)

	_, err = service.Cancel(ctx, order.ID)

	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSalesOrderService_GetByOrderNumber_NotFound(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	repo.On("FindByOrderNumber", ctx, "SO-2026-99999").
		Return(nil, shared.NewDomainError("NOT_FOUND", "Sales order not found"))

	_, err := service.GetByOrderNumber(ctx, "SO-2026-99999")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestSalesOrderService_List_BuildsFilter(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	customerID := uuid.New()

	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 &&
			f.Filters["status"] == "VALIDATED" &&
			f.Filters["customer_id"] == customerID
	})).Return([]trade.SalesOrder{*draftOrder(t)}, nil)

	resp, err := service.List(ctx, OrderListFilter{
		Page:       2,
		PageSize:   10,
		Status:     "VALIDATED",
		CustomerID: customerID.String(),
	})

	require.NoError(t, err)
	assert.Len(t, resp, 1)
	repo.AssertExpectations(t)
}

func TestSalesOrderService_List_InvalidCustomerID(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	_, err := service.List(ctx, OrderListFilter{CustomerID: "not-a-uuid"})

	require.Error(t, err)
	repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}
