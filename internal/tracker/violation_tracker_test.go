package tracker

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

const delay = 30 * time.Second

var trackerEpoch = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return trackerEpoch.Add(time.Duration(seconds) * time.Second)
}

func outOfZone(fence *models.PolygonFence) map[string]Observation {
	return map[string]Observation{
		fenceWorker: {Verdict: models.VerdictOutOfZone, Fence: fence, WithinShift: true},
	}
}

func inZone(fence *models.PolygonFence) map[string]Observation {
	return map[string]Observation{
		fenceWorker: {Verdict: models.VerdictInZone, Fence: fence, WithinShift: true},
	}
}

const fenceWorker = "w1"

func testFence() *models.PolygonFence {
	f := siteFence
	return &f
}

func TestTracker_DebouncesTransientViolations(t *testing.T) {
	vt := NewViolationTracker(false, zap.NewNop())
	fence := testFence()
	assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}

	for _, tick := range []int{0, 10, 20, 29} {
		if alerts := vt.Tick(at(tick), assigned, outOfZone(fence), delay); len(alerts) != 0 {
			t.Fatalf("t=%d: emitted %d alerts before delay elapsed", tick, len(alerts))
		}
	}

	alerts := vt.Tick(at(30), assigned, outOfZone(fence), delay)
	if len(alerts) != 1 {
		t.Fatalf("t=30: emitted %d alerts, want exactly 1 (delay is a lower bound)", len(alerts))
	}
	alert := alerts[0]
	if alert.WorkerID != fenceWorker || alert.FenceID != fence.ID || alert.FenceName != fence.Name {
		t.Errorf("alert = %+v", alert)
	}
	if alert.Kind != models.AlertOutOfZone {
		t.Errorf("alert kind = %s", alert.Kind)
	}
	if !alert.Timestamp.Equal(at(30)) {
		t.Errorf("alert timestamp = %v", alert.Timestamp)
	}

	for _, tick := range []int{40, 50} {
		if alerts := vt.Tick(at(tick), assigned, outOfZone(fence), delay); len(alerts) != 0 {
			t.Fatalf("t=%d: repeat alert within the same episode", tick)
		}
	}
}

func TestTracker_RearmsAfterRecoveryWithFreshTimer(t *testing.T) {
	vt := NewViolationTracker(false, zap.NewNop())
	fence := testFence()
	assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}

	vt.Tick(at(0), assigned, outOfZone(fence), delay)
	if alerts := vt.Tick(at(30), assigned, outOfZone(fence), delay); len(alerts) != 1 {
		t.Fatal("expected first alert at t=30")
	}

	// Recovery deletes the entry.
	vt.Tick(at(35), assigned, inZone(fence), delay)
	if len(vt.ActiveViolations()) != 0 {
		t.Fatal("entry should be deleted on recovery")
	}

	// Second episode starts at t=40: no credit for the earlier 30 seconds.
	vt.Tick(at(40), assigned, outOfZone(fence), delay)
	if alerts := vt.Tick(at(60), assigned, outOfZone(fence), delay); len(alerts) != 0 {
		t.Fatal("t=60: alerted too early, timer must fully reset on recovery")
	}
	if alerts := vt.Tick(at(70), assigned, outOfZone(fence), delay); len(alerts) != 1 {
		t.Fatal("t=70: expected the second episode's alert")
	}
}

func TestTracker_ResetVerdicts(t *testing.T) {
	fence := testFence()
	resets := []models.Verdict{
		models.VerdictInZone,
		models.VerdictOffShift,
		models.VerdictUnassigned,
		models.VerdictFenceMissing,
		models.VerdictNoData, // silent policy off
	}

	for _, verdict := range resets {
		t.Run(string(verdict), func(t *testing.T) {
			vt := NewViolationTracker(false, zap.NewNop())
			assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}

			vt.Tick(at(0), assigned, outOfZone(fence), delay)

			obs := map[string]Observation{fenceWorker: {Verdict: verdict, Fence: fence}}
			vt.Tick(at(10), assigned, obs, delay)

			if len(vt.ActiveViolations()) != 0 {
				t.Errorf("verdict %s did not reset the episode", verdict)
			}
		})
	}
}

func TestTracker_UnassignmentDropsPendingEntry(t *testing.T) {
	vt := NewViolationTracker(false, zap.NewNop())
	fence := testFence()
	assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}

	vt.Tick(at(0), assigned, outOfZone(fence), delay)

	// Worker unassigned; its (stale) observation would otherwise cross the
	// delay on the next tick.
	alerts := vt.Tick(at(60), nil, outOfZone(fence), delay)
	if len(alerts) != 0 {
		t.Fatal("alert emitted for unassigned worker")
	}
	if len(vt.ActiveViolations()) != 0 {
		t.Fatal("stale entry survived unassignment")
	}
}

func TestTracker_SilentDevicePolicy(t *testing.T) {
	fence := testFence()
	assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}
	silent := map[string]Observation{
		fenceWorker: {Verdict: models.VerdictNoData, Fence: fence, WithinShift: true},
	}

	t.Run("disabled treats no-data as reset", func(t *testing.T) {
		vt := NewViolationTracker(false, zap.NewNop())
		vt.Tick(at(0), assigned, silent, delay)
		if len(vt.ActiveViolations()) != 0 {
			t.Fatal("policy off: no-data must not start an episode")
		}
	})

	t.Run("enabled raises no-signal alert after delay", func(t *testing.T) {
		vt := NewViolationTracker(true, zap.NewNop())
		vt.Tick(at(0), assigned, silent, delay)
		alerts := vt.Tick(at(30), assigned, silent, delay)
		if len(alerts) != 1 || alerts[0].Kind != models.AlertNoSignal {
			t.Fatalf("alerts = %+v, want one no-signal alert", alerts)
		}
	})

	t.Run("enabled still ignores off-shift silence", func(t *testing.T) {
		vt := NewViolationTracker(true, zap.NewNop())
		offShiftSilent := map[string]Observation{
			fenceWorker: {Verdict: models.VerdictNoData, Fence: fence, WithinShift: false},
		}
		vt.Tick(at(0), assigned, offShiftSilent, delay)
		if len(vt.ActiveViolations()) != 0 {
			t.Fatal("off-shift silence must not start an episode")
		}
	})
}

func TestTracker_FenceNameIsSnapshotAtEmission(t *testing.T) {
	vt := NewViolationTracker(false, zap.NewNop())
	fence := testFence()
	assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}

	vt.Tick(at(0), assigned, outOfZone(fence), delay)

	renamed := *fence
	renamed.Name = "Renamed Zone"
	alerts := vt.Tick(at(30), assigned, outOfZone(&renamed), delay)
	if len(alerts) != 1 {
		t.Fatal("expected alert at t=30")
	}
	if alerts[0].FenceName != "Renamed Zone" {
		t.Errorf("fence name = %q, want the name current at emission time", alerts[0].FenceName)
	}
}

func TestTracker_Reset(t *testing.T) {
	vt := NewViolationTracker(false, zap.NewNop())
	fence := testFence()
	assigned := []models.WorkerAssignment{assignment(fenceWorker, fence.ID)}

	vt.Tick(at(0), assigned, outOfZone(fence), delay)
	vt.Reset()

	// After a reset the episode restarts from scratch.
	vt.Tick(at(10), assigned, outOfZone(fence), delay)
	if alerts := vt.Tick(at(30), assigned, outOfZone(fence), delay); len(alerts) != 0 {
		t.Fatal("t=30: alert fired from a pre-reset timer")
	}
	if alerts := vt.Tick(at(40), assigned, outOfZone(fence), delay); len(alerts) != 1 {
		t.Fatal("t=40: expected alert from the restarted episode")
	}
}

func TestTracker_IndependentWorkers(t *testing.T) {
	vt := NewViolationTracker(false, zap.NewNop())
	fence := testFence()
	assigned := []models.WorkerAssignment{
		assignment("w1", fence.ID),
		assignment("w2", fence.ID),
	}

	obs := map[string]Observation{
		"w1": {Verdict: models.VerdictOutOfZone, Fence: fence, WithinShift: true},
		"w2": {Verdict: models.VerdictInZone, Fence: fence, WithinShift: true},
	}
	vt.Tick(at(0), assigned, obs, delay)

	alerts := vt.Tick(at(30), assigned, obs, delay)
	if len(alerts) != 1 || alerts[0].WorkerID != "w1" {
		t.Fatalf("alerts = %+v, want exactly one for w1", alerts)
	}
}
