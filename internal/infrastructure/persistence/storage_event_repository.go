package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verone/backend/internal/domain/storage"
)

// GormEventRepository implements the append-only storage event ledger using
// GORM. Events are only ever inserted; corrections happen through new events.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Append inserts a new storage event
func (r *GormEventRepository) Append(ctx context.Context, event storage.StorageEvent) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

// FindByOwner returns all events for an owner, ordered by occurrence
func (r *GormEventRepository) FindByOwner(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID) ([]storage.StorageEvent, error) {
	var events []storage.StorageEvent
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("happened_at ASC, created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindByOwnerUntil returns the owner's events with happened_at strictly
// before the cutoff, enough to meter any period ending at or before it
func (r *GormEventRepository) FindByOwnerUntil(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, until time.Time) ([]storage.StorageEvent, error) {
	var events []storage.StorageEvent
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND happened_at < ?", ownerType, ownerID, until).
		Order("happened_at ASC, created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindByAllocation returns all events for one allocation, ordered by occurrence
func (r *GormEventRepository) FindByAllocation(ctx context.Context, allocationID uuid.UUID) ([]storage.StorageEvent, error) {
	var events []storage.StorageEvent
	if err := r.db.WithContext(ctx).
		Where("allocation_id = ?", allocationID).
		Order("happened_at ASC, created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Ensure GormEventRepository implements EventRepository
var _ storage.EventRepository = (*GormEventRepository)(nil)
