package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/alerts"
	"github.com/04rishabhgupta/ST-Homer/internal/device"
	"github.com/04rishabhgupta/ST-Homer/internal/feed"
	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/tracker"
)

// FeedClient supplies location samples from the external GPS API.
type FeedClient interface {
	FetchLocations(ctx context.Context) ([]models.LocationSample, error)
}

// FenceSource lists the stored fences.
type FenceSource interface {
	List() ([]models.PolygonFence, error)
}

// AssignmentSource lists the stored assignments.
type AssignmentSource interface {
	List() ([]models.WorkerAssignment, error)
}

// SettingsSource loads the current manager settings.
type SettingsSource interface {
	Load() (models.Settings, error)
}

// MonitorService drives the periodic compliance pass: fetch samples, take a
// snapshot, evaluate every assigned worker against it, feed the violation
// tracker, and push due alerts to the history.
//
// All ticks run on one goroutine, so evaluation passes are strictly
// serialized and at most one feed fetch is in flight at a time. A manual
// refresh is queued into the same loop rather than racing it.
type MonitorService struct {
	client      FeedClient
	cache       *feed.Cache
	fences      FenceSource
	assignments AssignmentSource
	settings    SettingsSource
	violations  *tracker.ViolationTracker
	history     *alerts.History
	logger      *zap.Logger

	fetchTimeout time.Duration
	now          func() time.Time

	mu          sync.RWMutex
	autoRefresh bool
	lastError   string

	refreshChan chan struct{}
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewMonitorService wires the monitor together. fetchTimeout bounds each feed
// request so a hung fetch cannot stall the loop forever.
func NewMonitorService(
	client FeedClient,
	cache *feed.Cache,
	fences FenceSource,
	assignments AssignmentSource,
	settings SettingsSource,
	violations *tracker.ViolationTracker,
	history *alerts.History,
	fetchTimeout time.Duration,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		client:       client,
		cache:        cache,
		fences:       fences,
		assignments:  assignments,
		settings:     settings,
		violations:   violations,
		history:      history,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
		autoRefresh:  true,
		refreshChan:  make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
	}
}

// Start begins the tick loop. The first pass runs immediately.
func (ms *MonitorService) Start() {
	ms.wg.Add(1)
	go ms.run()
	ms.logger.Info("Monitor service started")
}

// Stop ends the loop. A tick already in progress completes normally.
func (ms *MonitorService) Stop() {
	ms.stopOnce.Do(func() {
		close(ms.stopChan)
	})
	ms.wg.Wait()
	ms.logger.Info("Monitor service stopped")
}

// Refresh requests an immediate evaluation pass. The request coalesces with
// any refresh already pending.
func (ms *MonitorService) Refresh() {
	select {
	case ms.refreshChan <- struct{}{}:
	default:
	}
}

// SetAutoRefresh enables or disables scheduled ticks. Manual refreshes keep
// working either way.
func (ms *MonitorService) SetAutoRefresh(enabled bool) {
	ms.mu.Lock()
	ms.autoRefresh = enabled
	ms.mu.Unlock()
	ms.logger.Info("Auto refresh toggled", zap.Bool("enabled", enabled))
}

// AutoRefresh reports whether scheduled ticks are enabled.
func (ms *MonitorService) AutoRefresh() bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.autoRefresh
}

// LastError returns the most recent feed error message, empty when the last
// fetch succeeded.
func (ms *MonitorService) LastError() string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.lastError
}

// ClearAlert removes one alert from the history. Tracker state is untouched:
// a worker still in violation will not re-alert until they actually leave and
// re-enter violation.
func (ms *MonitorService) ClearAlert(alertID string) bool {
	return ms.history.Clear(alertID)
}

// ClearAllAlerts empties the history and resets all violation tracking, so
// ongoing violations start fresh episodes.
func (ms *MonitorService) ClearAllAlerts() {
	ms.history.ClearAll()
	ms.violations.Reset()
}

// DeviceStatuses returns the online/offline device list for the dashboard.
func (ms *MonitorService) DeviceStatuses() []models.DeviceStatus {
	settings := ms.currentSettings()
	timeout := time.Duration(settings.DeviceTimeoutSeconds) * time.Second
	return device.Statuses(ms.cache.Snapshot(), ms.now(), timeout)
}

// WorkerStatus evaluates a single worker on demand, for the worker-facing
// view.
func (ms *MonitorService) WorkerStatus(workerID string) (tracker.Observation, error) {
	fences, err := ms.fences.List()
	if err != nil {
		return tracker.Observation{}, err
	}
	assignments, err := ms.assignments.List()
	if err != nil {
		return tracker.Observation{}, err
	}
	return tracker.Evaluate(workerID, ms.cache.Snapshot(), assignments, fences, ms.now()), nil
}

func (ms *MonitorService) run() {
	defer ms.wg.Done()

	// Initial fetch so the dashboard is populated before the first interval
	// elapses.
	ms.runTick()

	for {
		interval := time.Duration(ms.currentSettings().AutoRefreshIntervalSeconds) * time.Second
		if interval <= 0 {
			interval = 5 * time.Second
		}
		timer := time.NewTimer(interval)

		select {
		case <-ms.stopChan:
			timer.Stop()
			return
		case <-ms.refreshChan:
			timer.Stop()
			ms.runTick()
		case <-timer.C:
			if ms.AutoRefresh() {
				ms.runTick()
			}
		}
	}
}

func (ms *MonitorService) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), ms.fetchTimeout)
	defer cancel()
	ms.tick(ctx, ms.now())
}

// tick performs one full evaluation pass. On fetch failure the pass still
// runs against the cached snapshot: stale data is reused silently and no
// tracker state is reset.
func (ms *MonitorService) tick(ctx context.Context, now time.Time) {
	samples, err := ms.client.FetchLocations(ctx)
	if err != nil {
		ms.setLastError(err.Error())
		ms.logger.Warn("Feed fetch failed, evaluating against cached samples", zap.Error(err))
	} else {
		ms.setLastError("")
		ms.cache.Ingest(samples, now)
	}

	fences, err := ms.fences.List()
	if err != nil {
		ms.logger.Error("Failed to load fences, skipping evaluation", zap.Error(err))
		return
	}
	assignments, err := ms.assignments.List()
	if err != nil {
		ms.logger.Error("Failed to load assignments, skipping evaluation", zap.Error(err))
		return
	}

	settings := ms.currentSettings()
	delay := time.Duration(settings.OutOfZoneAlertDelaySeconds) * time.Second

	// One snapshot per tick: every worker sees the same feed state.
	snapshot := ms.cache.Snapshot()
	observations := tracker.EvaluateAll(snapshot, assignments, fences, now)
	emitted := ms.violations.Tick(now, assignments, observations, delay)

	for _, alert := range emitted {
		ms.history.Append(alert)
	}

	ms.logger.Debug("Evaluation pass completed",
		zap.Int("workers", len(observations)),
		zap.Int("alerts", len(emitted)),
	)
}

func (ms *MonitorService) currentSettings() models.Settings {
	settings, err := ms.settings.Load()
	if err != nil {
		ms.logger.Warn("Failed to load settings, using defaults", zap.Error(err))
		return models.DefaultSettings()
	}
	return settings
}

func (ms *MonitorService) setLastError(message string) {
	ms.mu.Lock()
	ms.lastError = message
	ms.mu.Unlock()
}
