package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
)

// OwnerType identifies who pays for a storage allocation
type OwnerType string

const (
	OwnerTypeEnseigne     OwnerType = "ENSEIGNE"
	OwnerTypeOrganisation OwnerType = "ORGANISATION"
)

// IsValid checks if the owner type is valid
func (o OwnerType) IsValid() bool {
	return o == OwnerTypeEnseigne || o == OwnerTypeOrganisation
}

// StorageAllocation is a projection of the storage event stream: a block of
// warehouse volume reserved by an owner. Every mutation appends a
// StorageEvent; the mutation methods return the event to persist alongside
// the projection.
type StorageAllocation struct {
	shared.BaseAggregateRoot
	OwnerType    OwnerType       `gorm:"size:20;not null;index:idx_storage_allocations_owner" json:"owner_type"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_storage_allocations_owner" json:"owner_id"`
	Label        string          `gorm:"size:255;not null" json:"label"`
	Quantity     decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"quantity"`
	UnitVolumeM3 decimal.Decimal `gorm:"type:decimal(15,6);not null" json:"unit_volume_m3"`
	VolumeM3     decimal.Decimal `gorm:"type:decimal(15,6);not null" json:"volume_m3"`
	Billable     bool            `gorm:"not null;default:true" json:"billable"`
	DeletedAt    *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name
func (StorageAllocation) TableName() string {
	return "storage_allocations"
}

// NewStorageAllocation creates an allocation of quantity x unit volume and
// its opening ledger event
func NewStorageAllocation(ownerType OwnerType, ownerID uuid.UUID, label string, quantity, unitVolumeM3 decimal.Decimal, happenedAt time.Time) (*StorageAllocation, StorageEvent, error) {
	if !ownerType.IsValid() {
		return nil, StorageEvent{}, shared.NewDomainError("INVALID_OWNER_TYPE", "Owner must be an enseigne or an organisation")
	}
	if ownerID == uuid.Nil {
		return nil, StorageEvent{}, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if label == "" {
		return nil, StorageEvent{}, shared.NewDomainError("INVALID_LABEL", "Allocation label cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, StorageEvent{}, shared.NewDomainError("NEGATIVE_QUANTITY", "Allocation quantity cannot be negative")
	}
	if unitVolumeM3.IsNegative() {
		return nil, StorageEvent{}, shared.NewDomainError("NEGATIVE_VOLUME", "Unit volume cannot be negative")
	}

	alloc := &StorageAllocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerType:         ownerType,
		OwnerID:           ownerID,
		Label:             label,
		Quantity:          quantity,
		UnitVolumeM3:      unitVolumeM3,
		VolumeM3:          quantity.Mul(unitVolumeM3),
		Billable:          true,
	}

	event := newStorageEvent(alloc, EventSourceAllocationCreated, alloc.Quantity, alloc.VolumeM3, happenedAt)
	return alloc, event, nil
}

// IsDeleted returns true once the allocation has been removed from service
func (a *StorageAllocation) IsDeleted() bool {
	return a.DeletedAt != nil
}

// UpdateQuantity changes the allocated quantity and appends the
// corresponding volume delta to the ledger. Negative target quantities are
// rejected before any mutation.
func (a *StorageAllocation) UpdateQuantity(quantity decimal.Decimal, happenedAt time.Time) (StorageEvent, error) {
	if a.IsDeleted() {
		return StorageEvent{}, shared.NewDomainError("ALLOCATION_DELETED", "Cannot update a deleted allocation")
	}
	if quantity.IsNegative() {
		return StorageEvent{}, shared.NewDomainError("NEGATIVE_QUANTITY", "Allocation quantity cannot be negative")
	}

	newVolume := quantity.Mul(a.UnitVolumeM3)
	quantityChange := quantity.Sub(a.Quantity)
	volumeChange := newVolume.Sub(a.VolumeM3)

	a.Quantity = quantity
	a.VolumeM3 = newVolume
	a.Touch()

	return newStorageEvent(a, EventSourceQuantityUpdated, quantityChange, volumeChange, happenedAt), nil
}

// ToggleBillable flips whether the allocation's volume counts toward the
// billable total. The event carries a zero volume change; it only marks a
// segment boundary in the billable curve.
func (a *StorageAllocation) ToggleBillable(happenedAt time.Time) (StorageEvent, error) {
	if a.IsDeleted() {
		return StorageEvent{}, shared.NewDomainError("ALLOCATION_DELETED", "Cannot update a deleted allocation")
	}

	a.Billable = !a.Billable
	a.Touch()

	return newStorageEvent(a, EventSourceBillableToggled, decimal.Zero, decimal.Zero, happenedAt), nil
}

// Delete removes the allocation from service. Its volume contribution is
// zeroed from happenedAt onward.
func (a *StorageAllocation) Delete(happenedAt time.Time) (StorageEvent, error) {
	if a.IsDeleted() {
		return StorageEvent{}, shared.NewDomainError("ALLOCATION_DELETED", "Allocation is already deleted")
	}

	quantityChange := a.Quantity.Neg()
	volumeChange := a.VolumeM3.Neg()
	now := time.Now()

	a.Quantity = decimal.Zero
	a.VolumeM3 = decimal.Zero
	a.DeletedAt = &now
	a.UpdatedAt = now

	return newStorageEvent(a, EventSourceAllocationDeleted, quantityChange, volumeChange, happenedAt), nil
}
