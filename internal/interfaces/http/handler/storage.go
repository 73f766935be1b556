package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	storageapp "github.com/verone/backend/internal/application/storage"
	"github.com/verone/backend/internal/domain/storage"
)

// StorageHandler handles storage allocation and metering API endpoints
type StorageHandler struct {
	BaseHandler
	meteringService *storageapp.MeteringService
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(meteringService *storageapp.MeteringService) *StorageHandler {
	return &StorageHandler{meteringService: meteringService}
}

// meterQuery bounds the metering period; times are RFC 3339
type meterQuery struct {
	Start time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CreateAllocation reserves storage volume and opens its event ledger
func (h *StorageHandler) CreateAllocation(c *gin.Context) {
	var req storageapp.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.OwnerType = storage.OwnerType(strings.ToUpper(string(req.OwnerType)))

	alloc, err := h.meteringService.CreateAllocation(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, alloc)
}

// GetAllocation retrieves an allocation by ID
func (h *StorageHandler) GetAllocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	alloc, err := h.meteringService.GetAllocation(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, alloc)
}

// UpdateQuantity changes an allocation's quantity
func (h *StorageHandler) UpdateQuantity(c *gin.Context) {
	var req storageapp.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.mutateAllocation(c, func(ctx context.Context, id uuid.UUID) (*storageapp.AllocationResponse, error) {
		return h.meteringService.UpdateQuantity(ctx, id, req)
	})
}

// ToggleBillable flips whether an allocation counts toward billable usage
func (h *StorageHandler) ToggleBillable(c *gin.Context) {
	h.mutateAllocation(c, h.meteringService.ToggleBillable)
}

// DeleteAllocation removes an allocation from service. The allocation row and
// its events are kept; only its volume contribution ends.
func (h *StorageHandler) DeleteAllocation(c *gin.Context) {
	h.mutateAllocation(c, h.meteringService.DeleteAllocation)
}

func (h *StorageHandler) mutateAllocation(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*storageapp.AllocationResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	alloc, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, alloc)
}

// ListAllocations lists an owner's allocations
func (h *StorageHandler) ListAllocations(c *gin.Context) {
	ownerType, ownerID, ok := h.ownerParams(c)
	if !ok {
		return
	}

	allocs, err := h.meteringService.ListAllocations(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, allocs)
}

// ListEvents returns an owner's full storage event history
func (h *StorageHandler) ListEvents(c *gin.Context) {
	ownerType, ownerID, ok := h.ownerParams(c)
	if !ok {
		return
	}

	events, err := h.meteringService.ListEvents(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, events)
}

// GetOwnerUsage replays the ledger into the owner's current totals
func (h *StorageHandler) GetOwnerUsage(c *gin.Context) {
	ownerType, ownerID, ok := h.ownerParams(c)
	if !ok {
		return
	}

	usage, err := h.meteringService.GetOwnerUsage(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, usage)
}

// Meter computes the time-weighted average usage over a period
func (h *StorageHandler) Meter(c *gin.Context) {
	ownerType, ownerID, ok := h.ownerParams(c)
	if !ok {
		return
	}

	var query meterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.meteringService.Meter(c.Request.Context(), storageapp.MeterRequest{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		PeriodStart: query.Start,
		PeriodEnd:   query.End,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ownerParams parses the owner type and ID path parameters
func (h *StorageHandler) ownerParams(c *gin.Context) (storage.OwnerType, uuid.UUID, bool) {
	ownerType := storage.OwnerType(strings.ToUpper(c.Param("owner_type")))
	if !ownerType.IsValid() {
		h.BadRequest(c, "Owner type must be enseigne or organisation")
		return "", uuid.Nil, false
	}

	ownerID, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		h.BadRequest(c, "Invalid owner ID format")
		return "", uuid.Nil, false
	}

	return ownerType, ownerID, true
}
