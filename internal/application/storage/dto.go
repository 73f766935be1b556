package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/verone/backend/internal/domain/storage"
)

// CreateAllocationRequest reserves quantity x unit volume for an owner
type CreateAllocationRequest struct {
	OwnerType    storage.OwnerType `json:"owner_type" binding:"required"`
	OwnerID      uuid.UUID         `json:"owner_id" binding:"required"`
	Label        string            `json:"label" binding:"required"`
	Quantity     string            `json:"quantity" binding:"required"`
	UnitVolumeM3 string            `json:"unit_volume_m3" binding:"required"`
	HappenedAt   *time.Time        `json:"happened_at"`
}

// UpdateQuantityRequest changes an allocation's quantity
type UpdateQuantityRequest struct {
	Quantity   string     `json:"quantity" binding:"required"`
	HappenedAt *time.Time `json:"happened_at"`
}

// MeterRequest asks for the time-weighted usage of one owner over a period
type MeterRequest struct {
	OwnerType   storage.OwnerType `json:"owner_type" binding:"required"`
	OwnerID     uuid.UUID         `json:"owner_id" binding:"required"`
	PeriodStart time.Time         `json:"period_start" binding:"required"`
	PeriodEnd   time.Time         `json:"period_end" binding:"required"`
}

// AllocationResponse is the API representation of a storage allocation
type AllocationResponse struct {
	ID           uuid.UUID  `json:"id"`
	OwnerType    string     `json:"owner_type"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	Label        string     `json:"label"`
	Quantity     string     `json:"quantity"`
	UnitVolumeM3 string     `json:"unit_volume_m3"`
	VolumeM3     string     `json:"volume_m3"`
	Billable     bool       `json:"billable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToAllocationResponse converts a domain allocation to its API representation
func ToAllocationResponse(alloc *storage.StorageAllocation) AllocationResponse {
	return AllocationResponse{
		ID:           alloc.ID,
		OwnerType:    string(alloc.OwnerType),
		OwnerID:      alloc.OwnerID,
		Label:        alloc.Label,
		Quantity:     alloc.Quantity.String(),
		UnitVolumeM3: alloc.UnitVolumeM3.String(),
		VolumeM3:     alloc.VolumeM3.String(),
		Billable:     alloc.Billable,
		DeletedAt:    alloc.DeletedAt,
		CreatedAt:    alloc.CreatedAt,
		UpdatedAt:    alloc.UpdatedAt,
	}
}

// EventResponse is one ledger entry in an owner's history
type EventResponse struct {
	ID             uuid.UUID `json:"id"`
	AllocationID   uuid.UUID `json:"allocation_id"`
	Source         string    `json:"source"`
	QuantityChange string    `json:"quantity_change"`
	VolumeM3Change string    `json:"volume_m3_change"`
	BillableAfter  bool      `json:"billable_after"`
	HappenedAt     time.Time `json:"happened_at"`
}

// ToEventResponse converts a storage event to its API representation
func ToEventResponse(event storage.StorageEvent) EventResponse {
	return EventResponse{
		ID:             event.ID,
		AllocationID:   event.AllocationID,
		Source:         string(event.Source),
		QuantityChange: event.QuantityChange.String(),
		VolumeM3Change: event.VolumeM3Change.String(),
		BillableAfter:  event.BillableAfter,
		HappenedAt:     event.HappenedAt,
	}
}

// MeterResponse is the time-weighted usage over a period
type MeterResponse struct {
	OwnerType         string    `json:"owner_type"`
	OwnerID           uuid.UUID `json:"owner_id"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	AverageM3         string    `json:"average_m3"`
	BillableAverageM3 string    `json:"billable_average_m3"`
	TotalM3Days       string    `json:"total_m3_days"`
	BillableM3Days    string    `json:"billable_m3_days"`
	DaysInPeriod      string    `json:"days_in_period"`
}

// OwnerUsageResponse is an owner's live storage totals
type OwnerUsageResponse struct {
	OwnerType        string    `json:"owner_type"`
	OwnerID          uuid.UUID `json:"owner_id"`
	TotalVolumeM3    string    `json:"total_volume_m3"`
	BillableVolumeM3 string    `json:"billable_volume_m3"`
	EventCount       int       `json:"event_count"`
}
