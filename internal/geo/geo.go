package geo

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/s2"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for distance calculations.
const EarthRadiusMeters = 6371000.0

// PointInPolygon reports whether point lies inside the polygon described by
// vertices, using even-odd ray casting in the lat/lng plane. The polygon is
// implicitly closed (last vertex connects to first) and need not be convex.
// Coordinates are treated as planar, which is fine for site-scale geofences
// but not near the poles or the antimeridian. Points exactly on an edge may
// register as either inside or outside depending on floating-point alignment;
// this is a known property of the ray cast, not a bug.
//
// Fewer than 3 vertices is degenerate: nothing is ever inside.
func PointInPolygon(point models.GeoPoint, vertices []models.GeoPoint) bool {
	if len(vertices) < 3 {
		return false
	}

	inside := false
	x := point.Lng
	y := point.Lat

	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		xi, yi := vertices[i].Lng, vertices[i].Lat
		xj, yj := vertices[j].Lng, vertices[j].Lat

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}

// WithinShift reports whether now falls inside the [shiftStart, shiftEnd]
// wall-clock window, both bounds inclusive. Times are HH:MM strings sharing
// the local clock of now; no timezone conversion is performed. A window whose
// end precedes its start is an overnight shift and wraps past midnight.
// Malformed shift strings yield false.
func WithinShift(now time.Time, shiftStart, shiftEnd string) bool {
	startMinutes, err := parseClockMinutes(shiftStart)
	if err != nil {
		return false
	}
	endMinutes, err := parseClockMinutes(shiftEnd)
	if err != nil {
		return false
	}

	currentMinutes := now.Hour()*60 + now.Minute()

	if endMinutes < startMinutes {
		// Overnight shift, e.g. 22:00-06:00.
		return currentMinutes >= startMinutes || currentMinutes <= endMinutes
	}

	return currentMinutes >= startMinutes && currentMinutes <= endMinutes
}

// parseClockMinutes converts an HH:MM string to minutes since midnight.
func parseClockMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, strconv.ErrSyntax
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, strconv.ErrRange
	}
	return hours*60 + minutes, nil
}

// Centroid returns the arithmetic mean of the vertex coordinates. An empty
// sequence yields the zero point, which callers must treat as a sentinel
// rather than a real location.
func Centroid(vertices []models.GeoPoint) models.GeoPoint {
	if len(vertices) == 0 {
		return models.GeoPoint{}
	}

	var sumLat, sumLng float64
	for _, v := range vertices {
		sumLat += v.Lat
		sumLng += v.Lng
	}

	return models.GeoPoint{
		Lat: sumLat / float64(len(vertices)),
		Lng: sumLng / float64(len(vertices)),
	}
}

// HaversineMeters returns the great-circle distance between two points in
// meters.
func HaversineMeters(p1, p2 models.GeoPoint) float64 {
	a := s2.LatLngFromDegrees(p1.Lat, p1.Lng)
	b := s2.LatLngFromDegrees(p2.Lat, p2.Lng)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// InCircle reports whether point lies within radiusMeters of center.
// Used by the legacy circular-geofence dashboard view.
func InCircle(point, center models.GeoPoint, radiusMeters float64) bool {
	return HaversineMeters(point, center) <= radiusMeters
}

// InCircleFence reports whether point lies inside the legacy circular fence.
func InCircleFence(point models.GeoPoint, fence models.CircleFence) bool {
	return InCircle(point, fence.Center, fence.Radius)
}
