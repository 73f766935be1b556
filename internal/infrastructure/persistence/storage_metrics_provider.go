package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/verone/backend/internal/domain/storage"
	"github.com/verone/backend/internal/infrastructure/telemetry"
)

// GormStorageMetricsProvider feeds the telemetry layer with current stored
// volume per owner type. Deleted allocations are excluded since their volume
// is already zeroed on deletion.
type GormStorageMetricsProvider struct {
	db *gorm.DB
}

// NewGormStorageMetricsProvider creates a new GormStorageMetricsProvider
func NewGormStorageMetricsProvider(db *gorm.DB) *GormStorageMetricsProvider {
	return &GormStorageMetricsProvider{db: db}
}

type ownerVolumeRow struct {
	OwnerType  string
	TotalM3    float64
	BillableM3 float64
}

// GetVolumeByOwnerType returns total and billable volume in m3 per owner type
func (p *GormStorageMetricsProvider) GetVolumeByOwnerType(ctx context.Context) (map[string]telemetry.VolumeSnapshot, error) {
	var rows []ownerVolumeRow
	err := p.db.WithContext(ctx).
		Model(&storage.StorageAllocation{}).
		Select("owner_type, COALESCE(SUM(volume_m3), 0) AS total_m3, COALESCE(SUM(CASE WHEN billable THEN volume_m3 ELSE 0 END), 0) AS billable_m3").
		Where("deleted_at IS NULL").
		Group("owner_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	snapshots := make(map[string]telemetry.VolumeSnapshot, len(rows))
	for _, row := range rows {
		snapshots[row.OwnerType] = telemetry.VolumeSnapshot{
			TotalM3:    row.TotalM3,
			BillableM3: row.BillableM3,
		}
	}
	return snapshots, nil
}

// Ensure GormStorageMetricsProvider implements telemetry.StorageMetricsProvider
var _ telemetry.StorageMetricsProvider = (*GormStorageMetricsProvider)(nil)
