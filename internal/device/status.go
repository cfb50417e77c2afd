package device

import (
	"sort"
	"time"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// Statuses derives the presentation-layer device list from a snapshot of
// latest samples: each device's current position and an online flag based on
// how long ago it last reported. The timeout affects only this display split,
// never compliance evaluation.
func Statuses(latestByDevice map[string]models.LocationSample, now time.Time, timeout time.Duration) []models.DeviceStatus {
	statuses := make([]models.DeviceStatus, 0, len(latestByDevice))
	for _, sample := range latestByDevice {
		statuses = append(statuses, models.DeviceStatus{
			DeviceID:   sample.DeviceID,
			IsOnline:   now.Sub(sample.Timestamp) <= timeout,
			LastUpdate: sample.Timestamp,
			Position:   sample.Position(),
			Accelerometer: models.Acceleration{
				Ax: sample.Ax,
				Ay: sample.Ay,
				Az: sample.Az,
			},
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].DeviceID < statuses[j].DeviceID
	})
	return statuses
}
