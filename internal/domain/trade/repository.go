package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/verone/backend/internal/domain/shared"
)

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByID finds a sales order by its ID, with items loaded
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByOrderNumber finds a sales order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*SalesOrder, error)

	// FindAll finds sales orders with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesOrder, error)

	// Save persists a sales order and its items
	Save(ctx context.Context, order *SalesOrder) error

	// GenerateOrderNumber generates a unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
