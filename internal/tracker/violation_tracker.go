package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// entry is the tracker's memory of one ongoing violation episode.
type entry struct {
	startTime time.Time
	alerted   bool
}

// ViolationTracker converts per-tick observations into debounced zone alerts.
// It keeps one entry per worker currently in violation; the entry is created
// on the first out-of-zone tick, marked alerted once the debounce delay has
// elapsed and exactly one alert has been emitted, and deleted the moment the
// worker stops violating. Deleting the entry re-arms the worker: the next
// episode starts a fresh timer and can alert again.
//
// Tick is the only mutating entry point. The per-worker machine is cyclic:
//
//	compliant --out-of-zone--> pending --delay elapsed--> alerted
//	pending/alerted --any other verdict--> compliant
type ViolationTracker struct {
	mu      sync.Mutex
	entries map[string]*entry

	// alertOnSilent extends the violation definition to devices that stop
	// reporting during shift hours, emitting no-signal alerts.
	alertOnSilent bool
	logger        *zap.Logger
}

// NewViolationTracker creates an empty tracker.
func NewViolationTracker(alertOnSilentDevice bool, logger *zap.Logger) *ViolationTracker {
	return &ViolationTracker{
		entries:       make(map[string]*entry),
		alertOnSilent: alertOnSilentDevice,
		logger:        logger,
	}
}

// Tick processes one evaluation pass and returns the alerts that became due
// on this tick. now must be the same instant the observations were evaluated
// at. The delay is a lower bound: an episode exactly delay old emits.
func (vt *ViolationTracker) Tick(
	now time.Time,
	assignments []models.WorkerAssignment,
	observations map[string]Observation,
	alertDelay time.Duration,
) []models.ZoneAlert {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	var emitted []models.ZoneAlert

	for _, assignment := range assignments {
		obs, ok := observations[assignment.WorkerID]
		if !ok {
			continue
		}

		kind, violating := vt.classify(obs)
		if !violating || obs.Fence == nil {
			// Back in zone, off shift, or no longer evaluable: the episode
			// is over and the worker re-arms.
			if _, tracked := vt.entries[assignment.WorkerID]; tracked {
				delete(vt.entries, assignment.WorkerID)
				vt.logger.Debug("Violation episode ended",
					zap.String("worker_id", assignment.WorkerID),
					zap.String("verdict", string(obs.Verdict)),
				)
			}
			continue
		}

		tracked, exists := vt.entries[assignment.WorkerID]
		if !exists {
			vt.entries[assignment.WorkerID] = &entry{startTime: now}
			vt.logger.Debug("Violation episode started",
				zap.String("worker_id", assignment.WorkerID),
				zap.String("fence_id", obs.Fence.ID),
			)
			continue
		}

		if !tracked.alerted && now.Sub(tracked.startTime) >= alertDelay {
			alert := models.ZoneAlert{
				ID:        uuid.NewString(),
				WorkerID:  assignment.WorkerID,
				FenceID:   obs.Fence.ID,
				FenceName: obs.Fence.Name, // snapshot, survives fence renames
				Timestamp: now,
				Kind:      kind,
			}
			emitted = append(emitted, alert)
			tracked.alerted = true

			vt.logger.Info("Zone alert emitted",
				zap.String("worker_id", alert.WorkerID),
				zap.String("fence_name", alert.FenceName),
				zap.String("kind", string(alert.Kind)),
				zap.Duration("violation_duration", now.Sub(tracked.startTime)),
			)
		}
		// Already alerted, or delay not yet elapsed: one alert per episode.
	}

	// Drop entries for workers no longer assigned so stale timers cannot
	// fire after an unassignment.
	assigned := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		assigned[assignment.WorkerID] = struct{}{}
	}
	for workerID := range vt.entries {
		if _, ok := assigned[workerID]; !ok {
			delete(vt.entries, workerID)
		}
	}

	return emitted
}

// classify decides whether an observation counts as a violation and which
// alert kind a resulting alert carries.
func (vt *ViolationTracker) classify(obs Observation) (models.AlertKind, bool) {
	switch obs.Verdict {
	case models.VerdictOutOfZone:
		return models.AlertOutOfZone, true
	case models.VerdictNoData:
		if vt.alertOnSilent && obs.WithinShift {
			return models.AlertNoSignal, true
		}
	}
	return "", false
}

// Reset clears all violation state, restarting every worker at compliant.
func (vt *ViolationTracker) Reset() {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	vt.entries = make(map[string]*entry)
}

// ActiveViolations returns the workers currently tracked and when their
// episodes started.
func (vt *ViolationTracker) ActiveViolations() map[string]time.Time {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	active := make(map[string]time.Time, len(vt.entries))
	for workerID, e := range vt.entries {
		active[workerID] = e.startTime
	}
	return active
}
