package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/alerts"
	"github.com/04rishabhgupta/ST-Homer/internal/auth"
	"github.com/04rishabhgupta/ST-Homer/internal/config"
	"github.com/04rishabhgupta/ST-Homer/internal/database"
	"github.com/04rishabhgupta/ST-Homer/internal/feed"
	"github.com/04rishabhgupta/ST-Homer/internal/handler"
	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/repository"
	"github.com/04rishabhgupta/ST-Homer/internal/router"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
	"github.com/04rishabhgupta/ST-Homer/internal/tracker"
)

// stubFeed satisfies both the monitor's feed client and the device history
// fetcher without touching the network.
type stubFeed struct {
	samples []models.LocationSample
}

func (s *stubFeed) FetchLocations(ctx context.Context) ([]models.LocationSample, error) {
	return s.samples, nil
}

func (s *stubFeed) FetchHistory(ctx context.Context, deviceID string) ([]models.LocationSample, error) {
	var out []models.LocationSample
	for _, sample := range s.samples {
		if sample.DeviceID == deviceID {
			out = append(out, sample)
		}
	}
	return out, nil
}

// testServer wires a full router over a temp sqlite database and returns it
// with the auth service so tests can mint sessions.
func testServer(t *testing.T) (http.Handler, *auth.Service) {
	t.Helper()

	logger := zap.NewNop()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fenceRepo := repository.NewFenceRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)

	feedStub := &stubFeed{}
	cache := feed.NewCache(10, logger)
	violations := tracker.NewViolationTracker(false, logger)
	history := alerts.NewHistory(alerts.NewLogNotifier(logger), logger)

	monitor := service.NewMonitorService(
		feedStub, cache, fenceRepo, assignmentRepo, settingsRepo,
		violations, history, time.Second, logger,
	)

	authCfg := config.AuthConfig{
		ManagerEmail:    "manager@demo.com",
		ManagerPassword: "manager123",
		WorkerEmail:     "worker@demo.com",
		WorkerPassword:  "worker123",
		WorkerDeviceID:  "2",
	}
	authService := auth.NewService(authCfg, logger)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, logger),
		Fence:      handler.NewFenceHandler(service.NewFenceService(fenceRepo), logger),
		Assignment: handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo), logger),
		Alert:      handler.NewAlertHandler(history, monitor, logger),
		Device:     handler.NewDeviceHandler(monitor, feedStub, logger),
		Settings:   handler.NewSettingsHandler(settingsRepo, logger),
		Monitor:    handler.NewMonitorHandler(monitor, logger),
	}
	return router.New(handlers, authService, logger), authService
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %s returned %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := testServer(t)

	rec := do(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/health", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, _ := testServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "manager@demo.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, _ := testServer(t)

	paths := []string{
		"/api/v1/fences",
		"/api/v1/assignments",
		"/api/v1/alerts",
		"/api/v1/devices",
		"/api/v1/settings",
		"/api/v1/monitor/status",
	}
	for _, path := range paths {
		rec := do(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}
}

func TestWorkerCannotUseManagerRoutes(t *testing.T) {
	h, _ := testServer(t)
	token := login(t, h, "worker@demo.com", "worker123")

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/fences"},
		{http.MethodPost, "/api/v1/assignments"},
		{http.MethodGet, "/api/v1/alerts"},
		{http.MethodGet, "/api/v1/devices"},
		{http.MethodGet, "/api/v1/settings"},
		{http.MethodPost, "/api/v1/monitor/refresh"},
	}
	for _, tc := range cases {
		rec := do(t, h, tc.method, tc.path, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 for worker, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestFenceLifecycleOverHTTP(t *testing.T) {
	h, _ := testServer(t)
	token := login(t, h, "manager@demo.com", "manager123")

	create := models.CreateFenceRequest{
		Name: "Warehouse",
		Coordinates: []models.GeoPoint{
			{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0},
		},
		ShiftStart: "09:00",
		ShiftEnd:   "17:00",
	}
	rec := do(t, h, http.MethodPost, "/api/v1/fences", token, create)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create fence returned %d: %s", rec.Code, rec.Body.String())
	}
	var fence models.PolygonFence
	if err := json.NewDecoder(rec.Body).Decode(&fence); err != nil {
		t.Fatalf("failed to decode fence: %v", err)
	}
	if fence.ID == "" {
		t.Fatal("expected a generated fence id")
	}

	rec = do(t, h, http.MethodGet, "/api/v1/fences", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list fences returned %d", rec.Code)
	}
	var fences []models.PolygonFence
	if err := json.NewDecoder(rec.Body).Decode(&fences); err != nil {
		t.Fatalf("failed to decode fence list: %v", err)
	}
	if len(fences) != 1 || fences[0].Name != "Warehouse" {
		t.Fatalf("unexpected fence list: %+v", fences)
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/fences/delete?id="+fence.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete fence returned %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/fences?id="+fence.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after deletion, got %d", rec.Code)
	}
}

func TestWorkerSeesOnlyOwnAssignment(t *testing.T) {
	h, _ := testServer(t)
	managerToken := login(t, h, "manager@demo.com", "manager123")
	workerToken := login(t, h, "worker@demo.com", "worker123")

	rec := do(t, h, http.MethodPost, "/api/v1/fences", managerToken, models.CreateFenceRequest{
		Name: "Site A",
		Coordinates: []models.GeoPoint{
			{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0},
		},
		ShiftStart: "00:00",
		ShiftEnd:   "23:59",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create fence returned %d", rec.Code)
	}
	var fence models.PolygonFence
	if err := json.NewDecoder(rec.Body).Decode(&fence); err != nil {
		t.Fatalf("failed to decode fence: %v", err)
	}

	for _, workerID := range []string{"2", "other-worker"} {
		rec = do(t, h, http.MethodPost, "/api/v1/assignments", managerToken, models.AssignWorkerRequest{
			WorkerID: workerID,
			FenceID:  fence.ID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("assign %s returned %d: %s", workerID, rec.Code, rec.Body.String())
		}
	}

	// The worker asks for someone else's assignment but gets their own.
	rec = do(t, h, http.MethodGet, "/api/v1/assignments?workerId=other-worker", workerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("worker assignment lookup returned %d", rec.Code)
	}
	var assignment models.WorkerAssignment
	if err := json.NewDecoder(rec.Body).Decode(&assignment); err != nil {
		t.Fatalf("failed to decode assignment: %v", err)
	}
	if assignment.WorkerID != "2" {
		t.Errorf("expected worker pinned to own assignment, got %q", assignment.WorkerID)
	}

	// The manager sees the full list.
	rec = do(t, h, http.MethodGet, "/api/v1/assignments", managerToken, nil)
	var assignments []models.WorkerAssignment
	if err := json.NewDecoder(rec.Body).Decode(&assignments); err != nil {
		t.Fatalf("failed to decode assignment list: %v", err)
	}
	if len(assignments) != 2 {
		t.Errorf("expected 2 assignments, got %d", len(assignments))
	}
}

func TestSettingsRoundTripOverHTTP(t *testing.T) {
	h, _ := testServer(t)
	token := login(t, h, "manager@demo.com", "manager123")

	rec := do(t, h, http.MethodGet, "/api/v1/settings", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings returned %d", rec.Code)
	}
	var settings models.Settings
	if err := json.NewDecoder(rec.Body).Decode(&settings); err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if settings.OutOfZoneAlertDelaySeconds != 30 {
		t.Errorf("expected default alert delay 30, got %d", settings.OutOfZoneAlertDelaySeconds)
	}

	delay := 60
	rec = do(t, h, http.MethodPost, "/api/v1/settings/update", token, models.UpdateSettingsRequest{
		OutOfZoneAlertDelaySeconds: &delay,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/settings", token, nil)
	if err := json.NewDecoder(rec.Body).Decode(&settings); err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if settings.OutOfZoneAlertDelaySeconds != 60 {
		t.Errorf("expected updated alert delay 60, got %d", settings.OutOfZoneAlertDelaySeconds)
	}
	if settings.AutoRefreshIntervalSeconds != 5 {
		t.Errorf("partial update touched refresh interval: %d", settings.AutoRefreshIntervalSeconds)
	}
}

func TestWorkerStatusEndpoint(t *testing.T) {
	h, _ := testServer(t)
	workerToken := login(t, h, "worker@demo.com", "worker123")

	rec := do(t, h, http.MethodGet, "/api/v1/monitor/status", workerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("worker status returned %d: %s", rec.Code, rec.Body.String())
	}
	var status struct {
		WorkerID string `json:"workerId"`
		Verdict  string `json:"verdict"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.WorkerID != "2" {
		t.Errorf("expected worker's own id, got %q", status.WorkerID)
	}
	if status.Verdict != string(models.VerdictUnassigned) {
		t.Errorf("expected unassigned verdict, got %q", status.Verdict)
	}
}

func TestAlertsEndpointsForManager(t *testing.T) {
	h, _ := testServer(t)
	token := login(t, h, "manager@demo.com", "manager123")

	rec := do(t, h, http.MethodGet, "/api/v1/alerts", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get alerts returned %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" && got != "[]" {
		t.Errorf("expected empty alert list, got %q", got)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/alerts/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export alerts returned %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/alerts/clear-all", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("clear-all returned %d", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	h, _ := testServer(t)
	token := login(t, h, "manager@demo.com", "manager123")

	rec := do(t, h, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout returned %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/fences", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}
