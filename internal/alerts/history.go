package alerts

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// Notifier receives newly emitted alerts for immediate display. Delivery is
// fire-and-forget; the history list is the durable record within a session.
type Notifier interface {
	Notify(alert models.ZoneAlert)
}

// LogNotifier surfaces alerts on the application log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(alert models.ZoneAlert) {
	n.logger.Warn("Zone violation",
		zap.String("worker_id", alert.WorkerID),
		zap.String("fence_name", alert.FenceName),
		zap.String("kind", string(alert.Kind)),
		zap.Time("timestamp", alert.Timestamp),
	)
}

// History is the clearable alert list shown to managers. Alerts are
// immutable once appended; they leave the list only through Clear or
// ClearAll.
type History struct {
	mu       sync.RWMutex
	alerts   []models.ZoneAlert
	notifier Notifier
	logger   *zap.Logger
}

// NewHistory creates an empty alert history. notifier may be nil.
func NewHistory(notifier Notifier, logger *zap.Logger) *History {
	return &History{
		notifier: notifier,
		logger:   logger,
	}
}

// Append adds an alert to the history and notifies the display surface.
// If an un-cleared alert for the same worker is already present the new one
// is suppressed and Append returns false. The tracker's alerted flag is the
// primary duplicate guard; this check exists because the history is cleared
// independently of tracker state.
func (h *History) Append(alert models.ZoneAlert) bool {
	h.mu.Lock()
	for _, existing := range h.alerts {
		if existing.WorkerID == alert.WorkerID {
			h.mu.Unlock()
			h.logger.Debug("Suppressed duplicate alert",
				zap.String("worker_id", alert.WorkerID),
			)
			return false
		}
	}
	h.alerts = append(h.alerts, alert)
	h.mu.Unlock()

	if h.notifier != nil {
		h.notifier.Notify(alert)
	}
	return true
}

// List returns the alerts in emission order.
func (h *History) List() []models.ZoneAlert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.ZoneAlert, len(h.alerts))
	copy(out, h.alerts)
	return out
}

// Clear removes one alert by id, reporting whether it was present.
func (h *History) Clear(alertID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, alert := range h.alerts {
		if alert.ID == alertID {
			h.alerts = append(h.alerts[:i], h.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll empties the history.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alerts = nil
}

// Len returns the number of stored alerts.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.alerts)
}

// WriteCSV exports the history as worker id, fence name, timestamp rows.
func (h *History) WriteCSV(w io.Writer) error {
	h.mu.RLock()
	alerts := make([]models.ZoneAlert, len(h.alerts))
	copy(alerts, h.alerts)
	h.mu.RUnlock()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"worker_id", "fence_name", "timestamp"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, alert := range alerts {
		record := []string{alert.WorkerID, alert.FenceName, alert.Timestamp.Format(time.RFC3339)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
