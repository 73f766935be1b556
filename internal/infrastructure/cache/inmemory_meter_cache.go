package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	appstorage "github.com/verone/backend/internal/application/storage"
	"github.com/verone/backend/internal/domain/storage"
)

// meterEntry holds a cached result with expiration
type meterEntry struct {
	result    storage.WeightedAverageResult
	expiresAt time.Time
}

// InMemoryMeterCache implements MeterCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryMeterCache struct {
	mu        sync.RWMutex
	entries   map[string]meterEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryMeterCache creates a new in-memory meter cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryMeterCache(ttl time.Duration) *InMemoryMeterCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	c := &InMemoryMeterCache{
		entries:  make(map[string]meterEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns a cached weighted average result if present and not expired.
func (c *InMemoryMeterCache) Get(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period) (*storage.WeightedAverageResult, bool) {
	key := meterKey(ownerType, ownerID, period)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		return nil, false
	}

	result := e.result
	return &result, true
}

// Set stores a computed weighted average result with the configured TTL.
func (c *InMemoryMeterCache) Set(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period, result storage.WeightedAverageResult) {
	key := meterKey(ownerType, ownerID, period)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = meterEntry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryMeterCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryMeterCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryMeterCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryMeterCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func meterKey(ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period) string {
	return fmt.Sprintf("%s:%s:%d:%d",
		ownerType,
		ownerID,
		period.Start.UTC().Unix(),
		period.End.UTC().Unix(),
	)
}

// Ensure InMemoryMeterCache implements MeterCache
var _ appstorage.MeterCache = (*InMemoryMeterCache)(nil)
