package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tradeapp "github.com/verone/backend/internal/application/trade"
	"github.com/verone/backend/internal/domain/trade"
)

// OrderHandler handles sales order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.SalesOrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.SalesOrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID handles GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Status != "" {
		status := trade.OrderStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			h.BadRequest(c, "Invalid order status: "+filter.Status)
			return
		}
		filter.Status = string(status)
	}

	orders, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, orders)
}

// AddItem handles POST /orders/:id/items
func (h *OrderHandler) AddItem(c *gin.Context) {
	var req tradeapp.OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.mutateOrder(c, func(ctx context.Context, id uuid.UUID) (*tradeapp.OrderResponse, error) {
		return h.orderService.AddItem(ctx, id, req)
	})
}

// SetServiceFees handles PUT /orders/:id/fees
func (h *OrderHandler) SetServiceFees(c *gin.Context) {
	var req tradeapp.ServiceFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.mutateOrder(c, func(ctx context.Context, id uuid.UUID) (*tradeapp.OrderResponse, error) {
		return h.orderService.SetServiceFees(ctx, id, req)
	})
}

// Validate handles POST /orders/:id/validate
func (h *OrderHandler) Validate(c *gin.Context) {
	h.mutateOrder(c, h.orderService.Validate)
}

// Ship handles POST /orders/:id/ship
func (h *OrderHandler) Ship(c *gin.Context) {
	h.mutateOrder(c, h.orderService.Ship)
}

// Complete handles POST /orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.mutateOrder(c, h.orderService.Complete)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.mutateOrder(c, h.orderService.Cancel)
}

func (h *OrderHandler) mutateOrder(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*tradeapp.OrderResponse, error)) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := op(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
