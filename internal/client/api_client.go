package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

// APIClient talks to the external GPS ingest API that collects device
// readings. The API is query-action style: ?action=get_locations and
// ?action=get_history&device_id=...
type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new GPS feed client.
func NewAPIClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// locationsResponse matches the feed's envelope for current locations.
type locationsResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Devices []rawSample `json:"devices"`
}

// historyResponse matches the feed's envelope for per-device history.
type historyResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    []rawSample `json:"data"`
}

// rawSample tolerates the feed's loose field typing: coordinates and
// acceleration arrive as numbers or strings depending on the ingest path,
// and the timestamp field has two spellings.
type rawSample struct {
	DeviceID    string    `json:"device_id"`
	Lat         flexFloat `json:"lat"`
	Latitude    flexFloat `json:"latitude"`
	Lon         flexFloat `json:"lon"`
	Longitude   flexFloat `json:"longitude"`
	Ax          flexFloat `json:"ax"`
	Ay          flexFloat `json:"ay"`
	Az          flexFloat `json:"az"`
	ReadingTime string    `json:"reading_time"`
	Timestamp   string    `json:"timestamp"`
}

// flexFloat unmarshals a JSON number or numeric string. Malformed or missing
// values coerce to 0 so that NaN never reaches the geometry math.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return nil
		}
		s = unquoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*f = flexFloat(v)
	return nil
}

func (r rawSample) toSample() models.LocationSample {
	lat := float64(r.Latitude)
	if lat == 0 {
		lat = float64(r.Lat)
	}
	lon := float64(r.Longitude)
	if lon == 0 {
		lon = float64(r.Lon)
	}

	ts := r.ReadingTime
	if ts == "" {
		ts = r.Timestamp
	}

	return models.LocationSample{
		DeviceID:  r.DeviceID,
		Latitude:  lat,
		Longitude: lon,
		Ax:        float64(r.Ax),
		Ay:        float64(r.Ay),
		Az:        float64(r.Az),
		Timestamp: parseTimestamp(ts),
	}
}

// parseTimestamp accepts ISO-8601 or the feed's space-separated variant.
// An unparseable timestamp yields the zero time, which always loses the
// latest-sample comparison.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FetchLocations retrieves the current device readings.
func (c *APIClient) FetchLocations(ctx context.Context) ([]models.LocationSample, error) {
	endpoint := fmt.Sprintf("%s?action=get_locations", c.baseURL)

	var envelope locationsResponse
	if err := c.get(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, &BackendError{Message: fmt.Sprintf("feed reported failure: %s", envelope.Message)}
	}

	samples := make([]models.LocationSample, 0, len(envelope.Devices))
	for _, raw := range envelope.Devices {
		samples = append(samples, raw.toSample())
	}
	return samples, nil
}

// FetchHistory retrieves the stored readings for one device.
func (c *APIClient) FetchHistory(ctx context.Context, deviceID string) ([]models.LocationSample, error) {
	endpoint := fmt.Sprintf("%s?action=get_history&device_id=%s", c.baseURL, url.QueryEscape(deviceID))

	var envelope historyResponse
	if err := c.get(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, &BackendError{Message: fmt.Sprintf("feed reported failure: %s", envelope.Message)}
	}

	samples := make([]models.LocationSample, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		samples = append(samples, raw.toSample())
	}
	return samples, nil
}

// HealthCheck checks if the feed is reachable.
func (c *APIClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *APIClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Feed request failed",
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("feed returned status %d: %s", resp.StatusCode, string(body))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.logger.Error("Feed authentication failed",
				zap.Int("status_code", resp.StatusCode),
			)
			return &AuthError{Message: errMsg, StatusCode: resp.StatusCode}
		case http.StatusTooManyRequests:
			c.logger.Warn("Feed rate limited",
				zap.Int("status_code", resp.StatusCode),
			)
			return &RateLimitError{Message: errMsg, StatusCode: resp.StatusCode}
		default:
			c.logger.Error("Feed error",
				zap.Int("status_code", resp.StatusCode),
				zap.String("response", string(body)),
			)
			return &BackendError{Message: errMsg, StatusCode: resp.StatusCode}
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Debug("Feed request completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)
	return nil
}

// Error types
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type BackendError struct {
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	return e.Message
}
