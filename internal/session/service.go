// internal/session/service.go
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"comj-admin/internal/comj"
	"comj-admin/internal/common/database"
	"comj-admin/internal/common/errors"
	"comj-admin/internal/common/logger"
)

const sessionKeyPrefix = "session:"

// Record is the session metadata persisted in Redis.
type Record struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config holds the session service settings.
type Config struct {
	TTL time.Duration
}

// Service owns the admin session: who is signed in, nothing more. It is
// injected wherever the current user matters; there is no ambient state and
// no way to mark a session authenticated without going through the API.
type Service struct {
	config *Config
	client *comj.Client
	store  *database.RedisClient
	logger logger.Logger

	mu        sync.RWMutex
	user      *comj.User
	sessionID string
}

// NewService creates a session service backed by the API client and Redis.
func NewService(config *Config, client *comj.Client, store *database.RedisClient, log logger.Logger) *Service {
	return &Service{
		config: config,
		client: client,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "session"}),
	}
}

// Initialize restores the session from the API cookie: CheckAuth, then Me.
// Only administrator accounts are accepted; anything else is logged out.
func (s *Service) Initialize(ctx context.Context) error {
	authenticated, err := s.client.CheckAuth(ctx)
	if err != nil {
		s.clearLocal(ctx)
		return err
	}
	if !authenticated {
		return errors.NewSessionNotFoundError("")
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.Logout(ctx)
		return err
	}

	if !user.IsAdmin() {
		s.Logout(ctx)
		return errors.NewAccessDeniedError("role: " + roleName(user.Role))
	}

	s.establish(ctx, user)
	s.logger.Info("session restored", map[string]interface{}{
		"userId": user.ID,
	})
	return nil
}

// Login authenticates with email and password. Email normalization happens in
// the client. Non-admin accounts are rejected with the same message as bad
// credentials, so the login form leaks nothing about account existence.
func (s *Service) Login(ctx context.Context, email, password string) (*comj.User, error) {
	user, err := s.client.Login(ctx, email, password)
	if err != nil {
		if isUnauthorized(err) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, invalidCredentials()
	}

	s.establish(ctx, user)
	s.logger.Info("session established", map[string]interface{}{
		"userId": user.ID,
	})
	return user, nil
}

// Logout tears the session down. The API call may fail; local state is
// cleared regardless, so a dead backend can never trap a user in a session.
func (s *Service) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("logout API call failed, clearing local session anyway", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.clearLocal(ctx)
}

// DeleteAccount removes an account. When the deleted account belongs to the
// live session, the session is logged out afterwards.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.NewValidationFailedError("id", "ID do usuário não fornecido")
	}

	wasAuthenticated, err := s.client.CheckAuth(ctx)
	if err != nil {
		wasAuthenticated = false
	}

	if err := s.client.DeleteUser(ctx, userID); err != nil {
		return err
	}

	if wasAuthenticated && s.isCurrentUser(userID) {
		s.logger.Info("deleted the signed-in account, logging out", map[string]interface{}{
			"userId": userID,
		})
		s.Logout(ctx)
	}
	return nil
}

// CurrentUser returns the signed-in admin, if any.
func (s *Service) CurrentUser() (*comj.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// IsAuthenticated reports whether an admin session is live.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// SessionID returns the local session identifier, empty when signed out.
func (s *Service) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Service) establish(ctx context.Context, user *comj.User) {
	record := Record{
		SessionID: uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.user = user
	s.sessionID = record.SessionID
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	data, err := json.Marshal(record)
	if err == nil {
		err = s.store.Set(ctx, sessionKeyPrefix+record.SessionID, data, s.config.TTL)
	}
	if err != nil {
		// The session stands even if the record cannot be persisted.
		s.logger.Warn("failed to persist session record", map[string]interface{}{
			"sessionId": record.SessionID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) clearLocal(ctx context.Context) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.user = nil
	s.sessionID = ""
	s.mu.Unlock()

	if sessionID != "" && s.store != nil {
		if err := s.store.Del(ctx, sessionKeyPrefix+sessionID); err != nil {
			s.logger.Warn("failed to delete session record", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
		}
	}
}

func (s *Service) isCurrentUser(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.ID == userID
}

func invalidCredentials() *errors.StandardError {
	return &errors.StandardError{
		Code:      errors.ErrCodeAuthentication,
		Message:   "Email ou senha inválidos",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func isUnauthorized(err error) bool {
	stdErr, ok := err.(*errors.StandardError)
	if !ok || stdErr.Code != errors.ErrCodeServerRejected {
		return false
	}
	status, ok := stdErr.Metadata["httpStatus"].(int)
	return ok && status == 401
}

func roleName(role int) string {
	switch role {
	case comj.RoleAdmin:
		return "admin"
	case comj.RoleClient:
		return "client"
	default:
		return "unknown"
	}
}
