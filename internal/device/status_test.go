package device

import (
	"testing"
	"time"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

func TestStatuses(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	latest := map[string]models.LocationSample{
		"w2": {DeviceID: "w2", Latitude: 28.5, Longitude: 77.2, Ax: 0.1, Timestamp: now.Add(-10 * time.Second)},
		"w1": {DeviceID: "w1", Latitude: 28.6, Longitude: 77.3, Timestamp: now.Add(-45 * time.Second)},
	}

	statuses := Statuses(latest, now, 30*time.Second)
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}

	// Sorted by device id.
	if statuses[0].DeviceID != "w1" || statuses[1].DeviceID != "w2" {
		t.Errorf("order = %s, %s", statuses[0].DeviceID, statuses[1].DeviceID)
	}

	if statuses[0].IsOnline {
		t.Error("w1 reported 45s ago with a 30s timeout, should be offline")
	}
	if !statuses[1].IsOnline {
		t.Error("w2 reported 10s ago, should be online")
	}
	if statuses[1].Accelerometer.Ax != 0.1 {
		t.Errorf("accelerometer not carried through: %+v", statuses[1].Accelerometer)
	}
}

func TestStatuses_TimeoutBoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	latest := map[string]models.LocationSample{
		"w1": {DeviceID: "w1", Timestamp: now.Add(-30 * time.Second)},
	}

	statuses := Statuses(latest, now, 30*time.Second)
	if !statuses[0].IsOnline {
		t.Error("a device exactly at the timeout is still online")
	}
}
