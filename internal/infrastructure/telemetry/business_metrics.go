// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the billing and storage system.
// It tracks document lifecycle activity, metering computations, and storage volume.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	documentCreatedTotal   *Counter
	documentFinalizedTotal *Counter
	documentAmountTotal    *Counter
	meteringComputedTotal  *Counter

	// Histogram metrics (distributions)
	meteringDuration *Histogram

	// Gauge metrics (point-in-time values)
	storageVolumeTotal    *FloatGauge
	storageVolumeBillable *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	storageProvider StorageMetricsProvider
}

// StorageMetricsProvider provides storage volume data for periodic metrics
// collection. This interface allows the telemetry layer to query allocation
// state without depending on the storage domain directly.
type StorageMetricsProvider interface {
	// GetVolumeByOwnerType returns total and billable volume in m3 per owner type
	GetVolumeByOwnerType(ctx context.Context) (map[string]VolumeSnapshot, error)
}

// VolumeSnapshot is a point-in-time view of stored volume for one owner type.
type VolumeSnapshot struct {
	TotalM3    float64
	BillableM3 float64
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StorageProvider StorageMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		storageProvider: cfg.StorageProvider,
	}

	var err error

	// Document metrics
	bm.documentCreatedTotal, err = NewCounter(
		cfg.Meter,
		"verone_document_created_total",
		"Total number of financial documents created",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentFinalizedTotal, err = NewCounter(
		cfg.Meter,
		"verone_document_finalized_total",
		"Total number of financial documents finalized",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentAmountTotal, err = NewCounter(
		cfg.Meter,
		"verone_document_amount_total",
		"Total finalized document amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Metering metrics
	bm.meteringComputedTotal, err = NewCounter(
		cfg.Meter,
		"verone_metering_computed_total",
		"Total number of weighted average computations",
		"{computations}",
	)
	if err != nil {
		return nil, err
	}

	bm.meteringDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "verone_metering_duration_seconds",
		Description: "Duration of weighted average computations",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Storage gauge metrics
	bm.storageVolumeTotal, err = NewFloatGauge(
		cfg.Meter,
		"verone_storage_volume_m3",
		"Current stored volume in cubic meters",
		"m3",
	)
	if err != nil {
		return nil, err
	}

	bm.storageVolumeBillable, err = NewFloatGauge(
		cfg.Meter,
		"verone_storage_volume_billable_m3",
		"Current billable stored volume in cubic meters",
		"m3",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Document Metrics
// =============================================================================

// RecordDocumentCreated records a document creation event.
// This should be called from the application layer when a document is created.
func (bm *BusinessMetrics) RecordDocumentCreated(ctx context.Context, documentType string) {
	bm.documentCreatedTotal.Inc(ctx,
		AttrDocumentType.String(documentType),
	)
}

// RecordDocumentFinalized records a document finalization with its total amount.
// Amount is converted to the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordDocumentFinalized(ctx context.Context, documentType string, totalInclTax decimal.Decimal) {
	bm.documentFinalizedTotal.Inc(ctx,
		AttrDocumentType.String(documentType),
	)

	amountCents := totalInclTax.Mul(decimal.NewFromInt(100)).IntPart()
	bm.documentAmountTotal.Add(ctx, amountCents,
		AttrDocumentType.String(documentType),
	)
}

// =============================================================================
// Metering Metrics
// =============================================================================

// CacheResult labels a metering computation by how it was served.
type CacheResult string

const (
	CacheResultHit    CacheResult = "hit"
	CacheResultMiss   CacheResult = "miss"
	CacheResultBypass CacheResult = "bypass"
)

// RecordMeteringComputed records a weighted average computation and its duration.
func (bm *BusinessMetrics) RecordMeteringComputed(ctx context.Context, ownerType string, result CacheResult, elapsed time.Duration) {
	bm.meteringComputedTotal.Inc(ctx,
		AttrOwnerType.String(ownerType),
		AttrCacheResult.String(string(result)),
	)
	bm.meteringDuration.RecordDuration(ctx, elapsed,
		AttrOwnerType.String(ownerType),
		AttrCacheResult.String(string(result)),
	)
}

// =============================================================================
// Storage Metrics
// =============================================================================

// RecordStorageVolume records the current stored volume for an owner type.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordStorageVolume(ctx context.Context, ownerType string, totalM3, billableM3 float64) {
	bm.storageVolumeTotal.Record(ctx, totalM3,
		AttrOwnerType.String(ownerType),
	)
	bm.storageVolumeBillable.Record(ctx, billableM3,
		AttrOwnerType.String(ownerType),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects storage volume metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectStorageMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectStorageMetrics(ctx)
		}
	}
}

// collectStorageMetrics collects storage volume gauge metrics per owner type.
func (bm *BusinessMetrics) collectStorageMetrics(ctx context.Context) {
	if bm.storageProvider == nil {
		bm.logger.Debug("No storage provider configured, skipping storage metrics collection")
		return
	}

	snapshots, err := bm.storageProvider.GetVolumeByOwnerType(ctx)
	if err != nil {
		bm.logger.Error("Failed to collect storage volume metrics", zap.Error(err))
		return
	}

	for ownerType, snapshot := range snapshots {
		bm.RecordStorageVolume(ctx, ownerType, snapshot.TotalM3, snapshot.BillableM3)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
