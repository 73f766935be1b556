package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/trade"
)

// OrderItemRequest is one line in an order creation request.
// Decimal values cross the API as strings.
type OrderItemRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	ProductName string    `json:"product_name" binding:"required"`
	Quantity    string    `json:"quantity" binding:"required"`
	UnitPrice   string    `json:"unit_price" binding:"required"`
	TaxRate     string    `json:"tax_rate" binding:"required"`
}

// CreateOrderRequest creates a draft sales order
type CreateOrderRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	Items      []OrderItemRequest `json:"items"`
}

// ServiceFeesRequest sets an order's shipping, handling and insurance costs
type ServiceFeesRequest struct {
	Shipping  string `json:"shipping" binding:"required"`
	Handling  string `json:"handling" binding:"required"`
	Insurance string `json:"insurance" binding:"required"`
	TaxRate   string `json:"tax_rate" binding:"required"`
}

// OrderListFilter narrows order listings
type OrderListFilter struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string `form:"search"`
	Status     string `form:"status"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	ProductName      string    `json:"product_name"`
	Quantity         string    `json:"quantity"`
	UnitPriceExclTax string    `json:"unit_price_excl_tax"`
	TaxRate          string    `json:"tax_rate"`
	AmountExclTax    string    `json:"amount_excl_tax"`
}

// OrderResponse is the API representation of a sales order
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	OrderNumber          string              `json:"order_number"`
	CustomerID           uuid.UUID           `json:"customer_id"`
	Status               string              `json:"status"`
	Items                []OrderItemResponse `json:"items"`
	ShippingCostExclTax  string              `json:"shipping_cost_excl_tax"`
	HandlingCostExclTax  string              `json:"handling_cost_excl_tax"`
	InsuranceCostExclTax string              `json:"insurance_cost_excl_tax"`
	FeesTaxRate          string              `json:"fees_tax_rate"`
	TotalExclTax         string              `json:"total_excl_tax"`
	ValidatedAt          *time.Time          `json:"validated_at,omitempty"`
	ShippedAt            *time.Time          `json:"shipped_at,omitempty"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(order *trade.SalesOrder) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity.String(),
			UnitPriceExclTax: item.UnitPriceExclTax.String(),
			TaxRate:          item.TaxRate.String(),
			AmountExclTax:    item.AmountExclTax.String(),
		}
	}

	return OrderResponse{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		CustomerID:           order.CustomerID,
		Status:               string(order.Status),
		Items:                items,
		ShippingCostExclTax:  order.ShippingCostExclTax.String(),
		HandlingCostExclTax:  order.HandlingCostExclTax.String(),
		InsuranceCostExclTax: order.InsuranceCostExclTax.String(),
		FeesTaxRate:          order.FeesTaxRate.String(),
		TotalExclTax:         order.TotalExclTax.String(),
		ValidatedAt:          order.ValidatedAt,
		ShippedAt:            order.ShippedAt,
		CompletedAt:          order.CompletedAt,
		CancelledAt:          order.CancelledAt,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}

// parseDecimal converts an API decimal string, rejecting malformed input
func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, shared.NewDomainError("INVALID_DECIMAL", "Invalid "+field+": "+value)
	}
	return d, nil
}
