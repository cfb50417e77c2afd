package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/config"
)

// Role scopes what a logged-in user may see. Managers operate fences,
// assignments and alerts; workers see only their own assignment and status.
type Role string

const (
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

// User is a dashboard account. The demo deployment has exactly two.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	DeviceID string `json:"-"` // tracked device for worker accounts
}

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

type account struct {
	user     User
	password string
}

// Service performs the hard-coded two-user credential check and hands out
// opaque session tokens. Sessions live in memory for the process lifetime.
type Service struct {
	accounts map[string]account

	mu       sync.RWMutex
	sessions map[string]User

	logger *zap.Logger
}

// NewService builds the service from the configured demo accounts.
func NewService(cfg config.AuthConfig, logger *zap.Logger) *Service {
	accounts := map[string]account{
		strings.ToLower(cfg.ManagerEmail): {
			user:     User{ID: "1", Email: cfg.ManagerEmail, Name: "John Manager", Role: RoleManager},
			password: cfg.ManagerPassword,
		},
		strings.ToLower(cfg.WorkerEmail): {
			user:     User{ID: "2", Email: cfg.WorkerEmail, Name: "Jane Worker", Role: RoleWorker, DeviceID: cfg.WorkerDeviceID},
			password: cfg.WorkerPassword,
		},
	}

	return &Service{
		accounts: accounts,
		sessions: make(map[string]User),
		logger:   logger,
	}
}

// Login validates the credentials and returns the user with a fresh session
// token.
func (s *Service) Login(email, password string) (User, string, error) {
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return User{}, "", ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(acct.password), []byte(password)) != 1 {
		return User{}, "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = acct.user
	s.mu.Unlock()

	s.logger.Info("User logged in",
		zap.String("user_id", acct.user.ID),
		zap.String("role", string(acct.user.Role)),
	)
	return acct.user, token, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// UserForToken resolves a session token.
func (s *Service) UserForToken(token string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.sessions[token]
	return user, ok
}
