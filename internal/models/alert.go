package models

import "time"

// Verdict is the momentary compliance classification of a worker against
// their assignment. It is derived fresh on every evaluation, never stored.
type Verdict string

const (
	// VerdictUnassigned means the worker has no assignment.
	VerdictUnassigned Verdict = "unassigned"
	// VerdictFenceMissing means the assignment references a deleted fence.
	VerdictFenceMissing Verdict = "fence-missing"
	// VerdictNoData means no location sample exists for the worker's device.
	VerdictNoData Verdict = "no-data"
	// VerdictOffShift means the current time is outside the fence's shift window.
	VerdictOffShift Verdict = "off-shift"
	// VerdictInZone means the worker is inside the fence during shift hours.
	VerdictInZone Verdict = "in-zone"
	// VerdictOutOfZone means the worker is outside the fence during shift hours.
	VerdictOutOfZone Verdict = "out-of-zone"
)

// AlertKind distinguishes why a zone alert fired.
type AlertKind string

const (
	AlertOutOfZone AlertKind = "out-of-zone"
	AlertNoSignal  AlertKind = "no-signal"
)

// ZoneAlert is an immutable alert record. FenceName is a snapshot taken at
// emission time; renaming the fence afterwards must not rewrite history.
type ZoneAlert struct {
	ID        string    `json:"id"`
	WorkerID  string    `json:"workerId"`
	FenceID   string    `json:"fenceId"`
	FenceName string    `json:"fenceName"`
	Timestamp time.Time `json:"timestamp"`
	Kind      AlertKind `json:"type"`
}
