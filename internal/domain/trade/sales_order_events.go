package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeSalesOrderCreated   = "SalesOrderCreated"
	EventTypeSalesOrderValidated = "SalesOrderValidated"
)

// SalesOrderCreatedEvent is raised when a new sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(order *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
	}
}

// EventType returns the event type name
func (e *SalesOrderCreatedEvent) EventType() string {
	return EventTypeSalesOrderCreated
}

// SalesOrderValidatedEvent is raised when a sales order is validated.
// A validated order becomes eligible for invoice and quote creation.
type SalesOrderValidatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	TotalExclTax decimal.Decimal `json:"total_excl_tax"`
}

// NewSalesOrderValidatedEvent creates a new SalesOrderValidatedEvent
func NewSalesOrderValidatedEvent(order *SalesOrder) *SalesOrderValidatedEvent {
	return &SalesOrderValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderValidated, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		TotalExclTax:    order.TotalExclTax,
	}
}

// EventType returns the event type name
func (e *SalesOrderValidatedEvent) EventType() string {
	return EventTypeSalesOrderValidated
}
