package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusValidated OrderStatus = "VALIDATED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusValidated, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusValidated || target == OrderStatusCancelled
	case OrderStatusValidated:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsBillable returns true if a financial document may be created from an
// order in this status. Draft and cancelled orders are never billable.
func (s OrderStatus) IsBillable() bool {
	switch s {
	case OrderStatusValidated, OrderStatusShipped, OrderStatusCompleted:
		return true
	}
	return false
}

// SalesOrderItem represents a line item in a sales order
type SalesOrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	Quantity         decimal.Decimal
	UnitPriceExclTax decimal.Decimal
	TaxRate          decimal.Decimal // fraction, e.g. 0.2 for 20% VAT
	AmountExclTax    decimal.Decimal // Quantity * UnitPriceExclTax
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewSalesOrderItem creates a new sales order item
func NewSalesOrderItem(orderID, productID uuid.UUID, productName string, quantity decimal.Decimal, unitPrice valueobject.Money, taxRate decimal.Decimal) (*SalesOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	now := time.Now()
	return &SalesOrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ProductID:        productID,
		ProductName:      productName,
		Quantity:         quantity,
		UnitPriceExclTax: unitPrice.Amount(),
		TaxRate:          taxRate,
		AmountExclTax:    quantity.Mul(unitPrice.Amount()),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// UpdateQuantity updates the item quantity and recalculates the amount
func (i *SalesOrderItem) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	i.Quantity = quantity
	i.AmountExclTax = quantity.Mul(i.UnitPriceExclTax)
	i.UpdatedAt = time.Now()

	return nil
}

// SalesOrder represents a sales order aggregate root.
// It is the source collaborator for invoice and quote creation: its items
// and service fees provide the priced lines a financial document is built
// from.
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderNumber string
	CustomerID  uuid.UUID
	Items       []SalesOrderItem `gorm:"foreignKey:OrderID"`

	// Service fees, each excl. tax, all taxed at FeesTaxRate
	ShippingCostExclTax  decimal.Decimal
	HandlingCostExclTax  decimal.Decimal
	InsuranceCostExclTax decimal.Decimal
	FeesTaxRate          decimal.Decimal

	TotalExclTax decimal.Decimal
	Status       OrderStatus
	ValidatedAt  *time.Time
	ShippedAt    *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// TableName returns the database table name
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// TableName returns the database table name
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// NewSalesOrder creates a new sales order in DRAFT status
func NewSalesOrder(orderNumber string, customerID uuid.UUID) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	order := &SalesOrder{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		OrderNumber:          orderNumber,
		CustomerID:           customerID,
		Items:                make([]SalesOrderItem, 0),
		ShippingCostExclTax:  decimal.Zero,
		HandlingCostExclTax:  decimal.Zero,
		InsuranceCostExclTax: decimal.Zero,
		FeesTaxRate:          decimal.Zero,
		TotalExclTax:         decimal.Zero,
		Status:               OrderStatusDraft,
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a new item to the order. Only allowed in DRAFT status.
func (o *SalesOrder) AddItem(productID uuid.UUID, productName string, quantity decimal.Decimal, unitPrice valueobject.Money, taxRate decimal.Decimal) (*SalesOrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewSalesOrderItem(o.ID, productID, productName, quantity, unitPrice, taxRate)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.Touch()

	return item, nil
}

// SetServiceFees sets the shipping, handling and insurance costs and their
// shared tax rate. Only allowed in DRAFT status.
func (o *SalesOrder) SetServiceFees(shipping, handling, insurance valueobject.Money, taxRate decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update fees on a non-draft order")
	}
	if shipping.IsNegative() || handling.IsNegative() || insurance.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Service fees cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	o.ShippingCostExclTax = shipping.Amount()
	o.HandlingCostExclTax = handling.Amount()
	o.InsuranceCostExclTax = insurance.Amount()
	o.FeesTaxRate = taxRate
	o.Touch()

	return nil
}

// Validate validates the order, transitioning from DRAFT to VALIDATED.
// A validated order becomes eligible for invoicing.
func (o *SalesOrder) Validate() error {
	if !o.Status.CanTransitionTo(OrderStatusValidated) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot validate order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot validate order without items")
	}

	now := time.Now()
	o.Status = OrderStatusValidated
	o.ValidatedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderValidatedEvent(o))

	return nil
}

// Ship marks the order as shipped
func (o *SalesOrder) Ship() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now

	return nil
}

// Complete marks the order as completed (delivered/received)
func (o *SalesOrder) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now

	return nil
}

// Cancel cancels the order. Allowed only in DRAFT or VALIDATED status.
func (o *SalesOrder) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now

	return nil
}

// TotalFeesExclTax returns the sum of all service fees excl. tax
func (o *SalesOrder) TotalFeesExclTax() decimal.Decimal {
	return o.ShippingCostExclTax.Add(o.HandlingCostExclTax).Add(o.InsuranceCostExclTax)
}

// recalculateTotal recalculates the order item total
func (o *SalesOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.AmountExclTax)
	}
	o.TotalExclTax = total
}

// ItemCount returns the number of items in the order
func (o *SalesOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if the order is in draft status
func (o *SalesOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsTerminal returns true if the order is completed or cancelled
func (o *SalesOrder) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
