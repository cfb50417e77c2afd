package models

import "time"

// GeoPoint is a WGS-84 coordinate pair.
// Valid latitudes are [-90,90], longitudes [-180,180].
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationSample is a single reading from a tracked device, matching the
// ingest API record structure. (DeviceID, Timestamp) is not unique; consumers
// must pick the maximum-timestamp sample per device for current state.
type LocationSample struct {
	DeviceID  string    `json:"device_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Ax        float64   `json:"ax"`
	Ay        float64   `json:"ay"`
	Az        float64   `json:"az"`
	Timestamp time.Time `json:"timestamp"`
}

// Position returns the sample's coordinates as a GeoPoint.
func (s LocationSample) Position() GeoPoint {
	return GeoPoint{Lat: s.Latitude, Lng: s.Longitude}
}

// PolygonFence is a manager-drawn task area with an associated shift window.
// The vertex sequence is open: the last vertex implicitly connects to the
// first. Fewer than 3 vertices makes the fence degenerate (contains nothing).
type PolygonFence struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Coordinates []GeoPoint `json:"coordinates"`
	Color       string     `json:"color"`
	ShiftStart  string     `json:"shiftStart"` // HH:MM
	ShiftEnd    string     `json:"shiftEnd"`   // HH:MM
}

// CircleFence is the legacy circular geofence used by the classic dashboard
// view. Membership is haversine distance from center <= radius.
type CircleFence struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Center GeoPoint `json:"center"`
	Radius float64  `json:"radius"` // meters
	Color  string   `json:"color"`
}

// WorkerAssignment binds one worker to one fence. At most one assignment
// exists per worker; assigning again replaces the previous record.
// FenceID may dangle if the fence was deleted afterwards.
type WorkerAssignment struct {
	ID       string `json:"id"`
	WorkerID string `json:"workerId"`
	FenceID  string `json:"fenceId"`
	JobLabel string `json:"jobLabel"`
}

// Acceleration is a three-axis accelerometer reading.
type Acceleration struct {
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
}

// DeviceStatus is the presentation-layer view of a device: its latest
// position and whether it reported within the configured timeout.
type DeviceStatus struct {
	DeviceID      string       `json:"device_id"`
	IsOnline      bool         `json:"isOnline"`
	LastUpdate    time.Time    `json:"lastUpdate"`
	Position      GeoPoint     `json:"currentPosition"`
	Accelerometer Acceleration `json:"accelerometer"`
}

// CreateFenceRequest is the payload for adding or replacing a polygon fence.
type CreateFenceRequest struct {
	Name        string     `json:"name"`
	Coordinates []GeoPoint `json:"coordinates"`
	Color       string     `json:"color"`
	ShiftStart  string     `json:"shiftStart"`
	ShiftEnd    string     `json:"shiftEnd"`
}

// AssignWorkerRequest is the payload for assigning a worker to a fence.
type AssignWorkerRequest struct {
	WorkerID string `json:"workerId"`
	FenceID  string `json:"fenceId"`
	JobLabel string `json:"jobLabel"`
}
