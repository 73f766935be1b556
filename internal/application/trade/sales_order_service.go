package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
	"github.com/verone/backend/internal/domain/trade"
)

// SalesOrderService manages the order source collaborator for billing:
// orders are created, filled and validated here, then billed by the
// document service.
type SalesOrderService struct {
	orderRepo      trade.SalesOrderRepository
	eventPublisher shared.EventPublisher
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(orderRepo trade.SalesOrderRepository) *SalesOrderService {
	return &SalesOrderService{orderRepo: orderRepo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create builds a draft order with its initial items
func (s *SalesOrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewSalesOrder(orderNumber, req.CustomerID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if err := addItem(order, item); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

func addItem(order *trade.SalesOrder, req OrderItemRequest) error {
	quantity, err := parseDecimal("quantity", req.Quantity)
	if err != nil {
		return err
	}
	unitPrice, err := valueobject.NewMoneyEURFromString(req.UnitPrice)
	if err != nil {
		return shared.NewDomainError("INVALID_DECIMAL", "Invalid unit price: "+req.UnitPrice)
	}
	taxRate, err := parseDecimal("tax rate", req.TaxRate)
	if err != nil {
		return err
	}

	_, err = order.AddItem(req.ProductID, req.ProductName, quantity, unitPrice, taxRate)
	return err
}

// AddItem appends an item to a draft order
func (s *SalesOrderService) AddItem(ctx context.Context, orderID uuid.UUID, req OrderItemRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(order *trade.SalesOrder) error {
		return addItem(order, req)
	})
}

// SetServiceFees sets the shipping, handling and insurance costs of a draft order
func (s *SalesOrderService) SetServiceFees(ctx context.Context, orderID uuid.UUID, req ServiceFeesRequest) (*OrderResponse, error) {
	shipping, err := valueobject.NewMoneyEURFromString(req.Shipping)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DECIMAL", "Invalid shipping fee: "+req.Shipping)
	}
	handling, err := valueobject.NewMoneyEURFromString(req.Handling)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DECIMAL", "Invalid handling fee: "+req.Handling)
	}
	insurance, err := valueobject.NewMoneyEURFromString(req.Insurance)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DECIMAL", "Invalid insurance fee: "+req.Insurance)
	}
	taxRate, err := parseDecimal("tax rate", req.TaxRate)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(order *trade.SalesOrder) error {
		return order.SetServiceFees(shipping, handling, insurance, taxRate)
	})
}

// Validate moves a draft order to validated, making it eligible for billing
func (s *SalesOrderService) Validate(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(order *trade.SalesOrder) error {
		return order.Validate()
	})
}

// Ship marks a validated order as shipped
func (s *SalesOrderService) Ship(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(order *trade.SalesOrder) error {
		return order.Ship()
	})
}

// Complete marks a shipped order as completed
func (s *SalesOrderService) Complete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(order *trade.SalesOrder) error {
		return order.Complete()
	})
}

// Cancel cancels a draft or validated order
func (s *SalesOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(order *trade.SalesOrder) error {
		return order.Cancel()
	})
}

func (s *SalesOrderService) mutate(ctx context.Context, orderID uuid.UUID, op func(*trade.SalesOrder) error) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := op(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its number
func (s *SalesOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *SalesOrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, error) {
	domainFilter := shared.DefaultFilter()
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
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invalid customer ID: "+filter.CustomerID)
		}
		domainFilter.Filters["customer_id"] = customerID
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, nil
}

func (s *SalesOrderService) publishEvents(ctx context.Context, order *trade.SalesOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// publish failures are not fatal to the business operation
	_ = s.eventPublisher.Publish(ctx, events...)
	order.ClearDomainEvents()
}
