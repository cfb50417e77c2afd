package auth

import (
	"testing"

	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/config"
)

func testService() *Service {
	return NewService(config.AuthConfig{
		ManagerEmail:    "manager@demo.com",
		ManagerPassword: "manager123",
		WorkerEmail:     "worker@demo.com",
		WorkerPassword:  "worker123",
		WorkerDeviceID:  "2",
	}, zap.NewNop())
}

func TestLogin(t *testing.T) {
	s := testService()

	user, token, err := s.Login("manager@demo.com", "manager123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != RoleManager || token == "" {
		t.Errorf("user = %+v, token = %q", user, token)
	}

	resolved, ok := s.UserForToken(token)
	if !ok || resolved.ID != user.ID {
		t.Errorf("UserForToken = %+v, %v", resolved, ok)
	}
}

func TestLogin_EmailNormalization(t *testing.T) {
	s := testService()
	if _, _, err := s.Login("  Worker@Demo.com ", "worker123"); err != nil {
		t.Errorf("case/whitespace variant rejected: %v", err)
	}
}

func TestLogin_Rejections(t *testing.T) {
	s := testService()
	tests := []struct {
		name            string
		email, password string
	}{
		{"wrong password", "manager@demo.com", "nope"},
		{"unknown user", "intruder@demo.com", "manager123"},
		{"cross-account password", "worker@demo.com", "manager123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Login(tt.email, tt.password); err != ErrInvalidCredentials {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	s := testService()
	_, token, err := s.Login("worker@demo.com", "worker123")
	if err != nil {
		t.Fatal(err)
	}

	s.Logout(token)
	if _, ok := s.UserForToken(token); ok {
		t.Error("session survived logout")
	}
}

func TestWorkerDeviceBinding(t *testing.T) {
	s := testService()
	user, _, err := s.Login("worker@demo.com", "worker123")
	if err != nil {
		t.Fatal(err)
	}
	if user.DeviceID != "2" {
		t.Errorf("worker device id = %q, want 2", user.DeviceID)
	}
}
