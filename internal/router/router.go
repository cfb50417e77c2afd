package router

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/auth"
	"github.com/04rishabhgupta/ST-Homer/internal/handler"
)

// Handlers bundles the HTTP handlers wired into the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Fence      *handler.FenceHandler
	Assignment *handler.AssignmentHandler
	Alert      *handler.AlertHandler
	Device     *handler.DeviceHandler
	Settings   *handler.SettingsHandler
	Monitor    *handler.MonitorHandler
}

func New(h Handlers, authService *auth.Service, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Resolves the bearer token and stores the user on the request context.
	authenticated := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := authService.UserForToken(handler.BearerToken(r))
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}
			next(w, r.WithContext(auth.WithUser(r.Context(), user)))
		}
	}

	managerOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return authenticated(func(w http.ResponseWriter, r *http.Request) {
			user, _ := auth.UserFromContext(r.Context())
			if user.Role != auth.RoleManager {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"manager role required"}`))
				return
			}
			next(w, r)
		})
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth endpoints
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Auth.Login(w, r)
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Auth.Logout(w, r)
	})

	// Fence endpoints. Workers may read fences to render their own zone;
	// mutations are manager-only.
	mux.HandleFunc("/api/v1/fences", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			managerOnly(h.Fence.CreateFence)(w, r)
		case http.MethodGet:
			authenticated(h.Fence.GetFences)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/fences/update", managerOnly(h.Fence.UpdateFence))
	mux.HandleFunc("/api/v1/fences/delete", managerOnly(h.Fence.DeleteFence))

	// Assignment endpoints
	mux.HandleFunc("/api/v1/assignments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			managerOnly(h.Assignment.AssignWorker)(w, r)
		case http.MethodGet:
			authenticated(h.Assignment.GetAssignments)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/assignments/unassign", managerOnly(h.Assignment.UnassignWorker))

	// Alert endpoints
	mux.HandleFunc("/api/v1/alerts", managerOnly(h.Alert.GetAlerts))
	mux.HandleFunc("/api/v1/alerts/clear", managerOnly(h.Alert.ClearAlert))
	mux.HandleFunc("/api/v1/alerts/clear-all", managerOnly(h.Alert.ClearAllAlerts))
	mux.HandleFunc("/api/v1/alerts/export", managerOnly(h.Alert.ExportAlerts))

	// Device endpoints
	mux.HandleFunc("/api/v1/devices", managerOnly(h.Device.GetDevices))
	mux.HandleFunc("/api/v1/devices/history", managerOnly(h.Device.GetDeviceHistory))

	// Settings endpoints
	mux.HandleFunc("/api/v1/settings", managerOnly(h.Settings.GetSettings))
	mux.HandleFunc("/api/v1/settings/update", managerOnly(h.Settings.UpdateSettings))
	mux.HandleFunc("/api/v1/settings/reset", managerOnly(h.Settings.ResetSettings))

	// Monitor endpoints
	mux.HandleFunc("/api/v1/monitor/refresh", managerOnly(h.Monitor.Refresh))
	mux.HandleFunc("/api/v1/monitor/auto-refresh", managerOnly(h.Monitor.SetAutoRefresh))
	mux.HandleFunc("/api/v1/monitor/status", authenticated(h.Monitor.GetWorkerStatus))

	// Logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		mux.ServeHTTP(w, r)
	})
}
