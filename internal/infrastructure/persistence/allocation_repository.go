package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/storage"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds a storage allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*storage.StorageAllocation, error) {
	var alloc storage.StorageAllocation
	if err := r.db.WithContext(ctx).
		First(&alloc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alloc, nil
}

// FindByOwner finds all allocations for an owner, deleted ones included.
// Deleted allocations keep their row with zeroed volume so listings stay
// consistent with the event ledger.
func (r *GormAllocationRepository) FindByOwner(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID) ([]storage.StorageAllocation, error) {
	var allocs []storage.StorageAllocation
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at ASC").
		Find(&allocs).Error; err != nil {
		return nil, err
	}
	return allocs, nil
}

// FindAll finds allocations with filtering and pagination
func (r *GormAllocationRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[storage.StorageAllocation], error) {
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&storage.StorageAllocation{}),
		filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	var allocs []storage.StorageAllocation
	if err := query.Find(&allocs).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	pageSize := filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	result := shared.NewPaginated(allocs, total, page, pageSize)
	return &result, nil
}

// Save creates or updates a storage allocation
func (r *GormAllocationRepository) Save(ctx context.Context, alloc *storage.StorageAllocation) error {
	return r.db.WithContext(ctx).Save(alloc).Error
}

// SaveWithEvent writes the allocation and appends its ledger event in a
// single transaction so the projection and the ledger stay consistent
func (r *GormAllocationRepository) SaveWithEvent(ctx context.Context, alloc *storage.StorageAllocation, event storage.StorageEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(alloc).Error; err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
}

func (r *GormAllocationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("label LIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "owner_type":
			query = query.Where("owner_type = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "billable":
			query = query.Where("billable = ?", value)
		case "active":
			if active, ok := value.(bool); ok && active {
				query = query.Where("deleted_at IS NULL")
			}
		}
	}

	return query
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ storage.AllocationRepository = (*GormAllocationRepository)(nil)
