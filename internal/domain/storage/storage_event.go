package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventSource identifies the allocation operation that produced an event
type EventSource string

const (
	EventSourceAllocationCreated EventSource = "ALLOCATION_CREATED"
	EventSourceQuantityUpdated   EventSource = "QUANTITY_UPDATED"
	EventSourceAllocationDeleted EventSource = "ALLOCATION_DELETED"
	EventSourceBillableToggled   EventSource = "BILLABLE_TOGGLED"
)

// IsValid checks if the event source is valid
func (s EventSource) IsValid() bool {
	switch s {
	case EventSourceAllocationCreated, EventSourceQuantityUpdated,
		EventSourceAllocationDeleted, EventSourceBillableToggled:
		return true
	}
	return false
}

// StorageEvent is one immutable entry in the append-only storage ledger.
// The event stream is the source of truth; allocations are projections of
// it. QuantityChange and VolumeM3Change are the signed deltas the event
// applies to the allocation, and BillableAfter records the allocation's
// billable flag once the event has been applied, so a replay needs nothing
// but the events themselves.
type StorageEvent struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AllocationID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"allocation_id"`
	OwnerType      OwnerType       `gorm:"size:20;not null;index:idx_storage_events_owner" json:"owner_type"`
	OwnerID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_storage_events_owner" json:"owner_id"`
	Source         EventSource     `gorm:"size:30;not null" json:"source"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"quantity_change"`
	VolumeM3Change decimal.Decimal `gorm:"type:decimal(15,6);not null" json:"volume_m3_change"`
	BillableAfter  bool            `gorm:"not null" json:"billable_after"`
	HappenedAt     time.Time       `gorm:"not null;index" json:"happened_at"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (StorageEvent) TableName() string {
	return "storage_events"
}

func newStorageEvent(a *StorageAllocation, source EventSource, quantityChange, volumeChange decimal.Decimal, happenedAt time.Time) StorageEvent {
	return StorageEvent{
		ID:             uuid.New(),
		AllocationID:   a.ID,
		OwnerType:      a.OwnerType,
		OwnerID:        a.OwnerID,
		Source:         source,
		QuantityChange: quantityChange,
		VolumeM3Change: volumeChange,
		BillableAfter:  a.Billable,
		HappenedAt:     happenedAt,
		CreatedAt:      time.Now(),
	}
}
