package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/verone/backend/internal/domain/shared"
)

// AllocationRepository defines the persistence interface for allocations
type AllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StorageAllocation, error)
	FindByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]StorageAllocation, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[StorageAllocation], error)
	Save(ctx context.Context, alloc *StorageAllocation) error
	// SaveWithEvent persists the allocation projection and its ledger event
	// in one transaction. The projection must never drift from the ledger,
	// so the two writes commit or fail together.
	SaveWithEvent(ctx context.Context, alloc *StorageAllocation, event StorageEvent) error
}

// EventRepository is the append-only storage ledger. Events are never
// updated or deleted.
type EventRepository interface {
	Append(ctx context.Context, event StorageEvent) error
	FindByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]StorageEvent, error)
	// FindByOwnerUntil returns the owner's events with HappenedAt strictly
	// before the cutoff, enough to meter any period ending at or before it.
	FindByOwnerUntil(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID, until time.Time) ([]StorageEvent, error)
	FindByAllocation(ctx context.Context, allocationID uuid.UUID) ([]StorageEvent, error)
}
