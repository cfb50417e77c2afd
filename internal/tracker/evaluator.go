package tracker

import (
	"time"

	"github.com/04rishabhgupta/ST-Homer/internal/geo"
	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// Observation is the outcome of evaluating one worker on one tick: the
// verdict plus the context the violation tracker needs to build an alert.
type Observation struct {
	Verdict models.Verdict
	// Fence is the assigned fence, nil when the verdict is unassigned or
	// fence-missing.
	Fence *models.PolygonFence
	// WithinShift is only meaningful when Fence is non-nil.
	WithinShift bool
}

// Evaluate classifies one worker against their assignment using the given
// snapshot of latest samples. It is pure: identical inputs always produce the
// identical observation, and nothing is retained between calls.
//
// A worker's device id is their worker id. A fence with fewer than 3 vertices
// can never contain a point, so a worker assigned to a degenerate fence shows
// as out-of-zone for the whole shift; that silent degradation is deliberate.
func Evaluate(
	workerID string,
	latestByDevice map[string]models.LocationSample,
	assignments []models.WorkerAssignment,
	fences []models.PolygonFence,
	now time.Time,
) Observation {
	assignment := findAssignment(assignments, workerID)
	if assignment == nil {
		return Observation{Verdict: models.VerdictUnassigned}
	}

	fence := findFence(fences, assignment.FenceID)
	if fence == nil {
		// Dangling fence reference: the fence was deleted after assignment.
		return Observation{Verdict: models.VerdictFenceMissing}
	}

	withinShift := geo.WithinShift(now, fence.ShiftStart, fence.ShiftEnd)

	sample, ok := latestByDevice[workerID]
	if !ok {
		return Observation{Verdict: models.VerdictNoData, Fence: fence, WithinShift: withinShift}
	}

	if !withinShift {
		// Off-shift location drift is not policed.
		return Observation{Verdict: models.VerdictOffShift, Fence: fence, WithinShift: false}
	}

	if geo.PointInPolygon(sample.Position(), fence.Coordinates) {
		return Observation{Verdict: models.VerdictInZone, Fence: fence, WithinShift: true}
	}
	return Observation{Verdict: models.VerdictOutOfZone, Fence: fence, WithinShift: true}
}

// EvaluateAll evaluates every assigned worker against the same snapshot.
func EvaluateAll(
	latestByDevice map[string]models.LocationSample,
	assignments []models.WorkerAssignment,
	fences []models.PolygonFence,
	now time.Time,
) map[string]Observation {
	observations := make(map[string]Observation, len(assignments))
	for _, assignment := range assignments {
		observations[assignment.WorkerID] = Evaluate(assignment.WorkerID, latestByDevice, assignments, fences, now)
	}
	return observations
}

func findAssignment(assignments []models.WorkerAssignment, workerID string) *models.WorkerAssignment {
	for i := range assignments {
		if assignments[i].WorkerID == workerID {
			return &assignments[i]
		}
	}
	return nil
}

func findFence(fences []models.PolygonFence, fenceID string) *models.PolygonFence {
	for i := range fences {
		if fences[i].ID == fenceID {
			return &fences[i]
		}
	}
	return nil
}
