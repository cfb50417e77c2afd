package feed

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// Cache holds the received location samples. It keeps the latest sample per
// device plus a bounded recent-history buffer; older samples are evicted so
// the cache cannot grow without limit over a long session.
type Cache struct {
	mu           sync.RWMutex
	latest       map[string]models.LocationSample
	recent       map[string][]models.LocationSample
	maxPerDevice int
	lastUpdate   time.Time
	logger       *zap.Logger
}

// NewCache creates a sample cache retaining at most maxPerDevice samples per
// device. Values below 1 fall back to 1 (the latest sample is always kept).
func NewCache(maxPerDevice int, logger *zap.Logger) *Cache {
	if maxPerDevice < 1 {
		maxPerDevice = 1
	}
	return &Cache{
		latest:       make(map[string]models.LocationSample),
		recent:       make(map[string][]models.LocationSample),
		maxPerDevice: maxPerDevice,
		logger:       logger,
	}
}

// Ingest merges a batch of samples into the cache. A sample replaces the
// device's latest entry only if its timestamp is not older; the feed may
// deliver duplicates or out-of-order readings.
func (c *Cache) Ingest(samples []models.LocationSample, receivedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sample := range samples {
		if sample.DeviceID == "" {
			continue
		}

		existing, ok := c.latest[sample.DeviceID]
		if !ok || !sample.Timestamp.Before(existing.Timestamp) {
			c.latest[sample.DeviceID] = sample
		}

		buf := append(c.recent[sample.DeviceID], sample)
		if len(buf) > c.maxPerDevice {
			buf = buf[len(buf)-c.maxPerDevice:]
		}
		c.recent[sample.DeviceID] = buf
	}

	c.lastUpdate = receivedAt

	c.logger.Debug("Ingested samples",
		zap.Int("count", len(samples)),
		zap.Int("devices", len(c.latest)),
	)
}

// Snapshot returns a copy of the latest sample per device. Every worker
// evaluated within one tick sees the same snapshot.
func (c *Cache) Snapshot() map[string]models.LocationSample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]models.LocationSample, len(c.latest))
	for id, sample := range c.latest {
		snapshot[id] = sample
	}
	return snapshot
}

// Latest returns the most recent sample for one device.
func (c *Cache) Latest(deviceID string) (models.LocationSample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sample, ok := c.latest[deviceID]
	return sample, ok
}

// Recent returns the buffered recent samples for one device, oldest first.
func (c *Cache) Recent(deviceID string) []models.LocationSample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf := c.recent[deviceID]
	out := make([]models.LocationSample, len(buf))
	copy(out, buf)
	return out
}

// LastUpdate returns when the cache last received a successful batch.
func (c *Cache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}
