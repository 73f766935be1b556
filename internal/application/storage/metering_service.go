package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/storage"
)

// MeterCache caches computed weighted averages. The event stream is
// append-only, so a period that has fully elapsed can be cached until the
// entry expires; misses are not errors.
type MeterCache interface {
	Get(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period) (*storage.WeightedAverageResult, bool)
	Set(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period, result storage.WeightedAverageResult)
}

// MeteringService manages storage allocations and computes usage
type MeteringService struct {
	allocRepo storage.AllocationRepository
	eventRepo storage.EventRepository
	cache     MeterCache
}

// NewMeteringService creates a new MeteringService
func NewMeteringService(allocRepo storage.AllocationRepository, eventRepo storage.EventRepository) *MeteringService {
	return &MeteringService{
		allocRepo: allocRepo,
		eventRepo: eventRepo,
	}
}

// SetCache sets the metering result cache
func (s *MeteringService) SetCache(cache MeterCache) {
	s.cache = cache
}

// CreateAllocation reserves storage volume and opens its ledger
func (s *MeteringService) CreateAllocation(ctx context.Context, req CreateAllocationRequest) (*AllocationResponse, error) {
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DECIMAL", "Invalid quantity: "+req.Quantity)
	}
	unitVolume, err := decimal.NewFromString(req.UnitVolumeM3)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DECIMAL", "Invalid unit volume: "+req.UnitVolumeM3)
	}

	alloc, event, err := storage.NewStorageAllocation(req.OwnerType, req.OwnerID, req.Label, quantity, unitVolume, happenedAt(req.HappenedAt))
	if err != nil {
		return nil, err
	}

	if err := s.allocRepo.SaveWithEvent(ctx, alloc, event); err != nil {
		return nil, err
	}

	response := ToAllocationResponse(alloc)
	return &response, nil
}

// UpdateQuantity changes an allocation's quantity and appends the delta
func (s *MeteringService) UpdateQuantity(ctx context.Context, id uuid.UUID, req UpdateQuantityRequest) (*AllocationResponse, error) {
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DECIMAL", "Invalid quantity: "+req.Quantity)
	}

	return s.mutate(ctx, id, func(alloc *storage.StorageAllocation) (storage.StorageEvent, error) {
		return alloc.UpdateQuantity(quantity, happenedAt(req.HappenedAt))
	})
}

// ToggleBillable flips whether an allocation counts toward billable usage
func (s *MeteringService) ToggleBillable(ctx context.Context, id uuid.UUID) (*AllocationResponse, error) {
	return s.mutate(ctx, id, func(alloc *storage.StorageAllocation) (storage.StorageEvent, error) {
		return alloc.ToggleBillable(time.Now())
	})
}

// DeleteAllocation removes an allocation from service, zeroing its volume
// contribution from now on
func (s *MeteringService) DeleteAllocation(ctx context.Context, id uuid.UUID) (*AllocationResponse, error) {
	return s.mutate(ctx, id, func(alloc *storage.StorageAllocation) (storage.StorageEvent, error) {
		return alloc.Delete(time.Now())
	})
}

func (s *MeteringService) mutate(ctx context.Context, id uuid.UUID, op func(*storage.StorageAllocation) (storage.StorageEvent, error)) (*AllocationResponse, error) {
	alloc, err := s.allocRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event, err := op(alloc)
	if err != nil {
		return nil, err
	}

	if err := s.allocRepo.SaveWithEvent(ctx, alloc, event); err != nil {
		return nil, err
	}

	response := ToAllocationResponse(alloc)
	return &response, nil
}

// GetAllocation retrieves an allocation by ID
func (s *MeteringService) GetAllocation(ctx context.Context, id uuid.UUID) (*AllocationResponse, error) {
	alloc, err := s.allocRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToAllocationResponse(alloc)
	return &response, nil
}

// ListAllocations lists an owner's allocations
func (s *MeteringService) ListAllocations(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID) ([]AllocationResponse, error) {
	if !ownerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OWNER_TYPE", "Owner must be an enseigne or an organisation")
	}

	allocs, err := s.allocRepo.FindByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]AllocationResponse, len(allocs))
	for i := range allocs {
		responses[i] = ToAllocationResponse(&allocs[i])
	}
	return responses, nil
}

// ListEvents returns an owner's full ledger history
func (s *MeteringService) ListEvents(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID) ([]EventResponse, error) {
	if !ownerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OWNER_TYPE", "Owner must be an enseigne or an organisation")
	}

	events, err := s.eventRepo.FindByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = ToEventResponse(event)
	}
	return responses, nil
}

// GetOwnerUsage replays the full ledger into the owner's current totals
func (s *MeteringService) GetOwnerUsage(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID) (*OwnerUsageResponse, error) {
	if !ownerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OWNER_TYPE", "Owner must be an enseigne or an organisation")
	}

	events, err := s.eventRepo.FindByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	usage := storage.CurrentOwnerUsage(ownerType, ownerID, events)
	return &OwnerUsageResponse{
		OwnerType:        string(usage.OwnerType),
		OwnerID:          usage.OwnerID,
		TotalVolumeM3:    usage.TotalVolumeM3.String(),
		BillableVolumeM3: usage.BillableVolumeM3.String(),
		EventCount:       usage.EventCount,
	}, nil
}

// Meter computes the time-weighted average usage over a period. Fully
// elapsed periods are served from the cache when one is configured.
func (s *MeteringService) Meter(ctx context.Context, req MeterRequest) (*MeterResponse, error) {
	if !req.OwnerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OWNER_TYPE", "Owner must be an enseigne or an organisation")
	}

	period, err := storage.NewPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	cacheable := s.cache != nil && period.End.Before(time.Now())
	if cacheable {
		if cached, ok := s.cache.Get(ctx, req.OwnerType, req.OwnerID, period); ok {
			return toMeterResponse(req, period, *cached), nil
		}
	}

	events, err := s.eventRepo.FindByOwnerUntil(ctx, req.OwnerType, req.OwnerID, period.End)
	if err != nil {
		return nil, err
	}

	result := storage.ComputeWeightedAverage(events, period)

	if cacheable {
		s.cache.Set(ctx, req.OwnerType, req.OwnerID, period, result)
	}
	return toMeterResponse(req, period, result), nil
}

func toMeterResponse(req MeterRequest, period storage.Period, result storage.WeightedAverageResult) *MeterResponse {
	return &MeterResponse{
		OwnerType:         string(req.OwnerType),
		OwnerID:           req.OwnerID,
		PeriodStart:       period.Start,
		PeriodEnd:         period.End,
		AverageM3:         result.AverageM3.String(),
		BillableAverageM3: result.BillableAverageM3.String(),
		TotalM3Days:       result.TotalM3Days.String(),
		BillableM3Days:    result.BillableM3Days.String(),
		DaysInPeriod:      result.DaysInPeriod.String(),
	}
}

func happenedAt(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
