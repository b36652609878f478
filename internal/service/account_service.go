package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lendit/internal/models"
	"lendit/internal/redisclient"
	"lendit/internal/store"
	"lendit/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore keeps login sessions outside the process
type SessionStore interface {
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	GetSession(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

// EventPublisher receives domain events after successful writes
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error
	PublishUserLoggedIn(ctx context.Context, event *models.UserLoggedInEvent) error
	PublishProductListed(ctx context.Context, event *models.ProductListedEvent) error
}

// AccountService handles registration, login and sessions
type AccountService struct {
	store          *store.Store
	sessions       SessionStore
	eventPublisher EventPublisher
	sessionTTL     time.Duration
	bcryptCost     int
	logger         *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	store *store.Store,
	sessions SessionStore,
	eventPublisher EventPublisher,
	sessionTTL time.Duration,
	bcryptCost int,
) *AccountService {
	return &AccountService{
		store:          store,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		sessionTTL:     sessionTTL,
		bcryptCost:     bcryptCost,
		logger:         util.GetLogger(),
	}
}

// RegisterRequest represents a registration form
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// LoginRequest represents a login form
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResponse carries the session token bound to the user
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *models.User `json:"user"`
}

// Register creates a user. The email pre-check is not atomic with the
// insert; a concurrent duplicate is caught by users_email_key.
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Register")
	defer span.End()

	user, err := s.validateRegistration(req)
	if err != nil {
		util.RegistrationsRejectedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	exists, err := s.store.EmailExists(ctx, user.Email)
	if err != nil {
		return nil, util.SpanError(span, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if exists {
		util.RegistrationsRejectedTotal.WithLabelValues("duplicate_email").Inc()
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, util.SpanError(span, fmt.Errorf("failed to hash password: %w", err))
	}
	user.PasswordHash = string(hash)

	if err := s.store.CreateUser(ctx, user); err != nil {
		mapped := mapWriteErr(err)
		if errors.Is(mapped, ErrDuplicateEmail) {
			util.RegistrationsRejectedTotal.WithLabelValues("duplicate_email").Inc()
			s.logger.Warn("Concurrent registration rejected by unique constraint",
				zap.String("email", user.Email))
		}
		return nil, util.SpanError(span, mapped)
	}

	util.RegistrationsTotal.Inc()
	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))

	event := &models.UserRegisteredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeUserRegistered,
			Timestamp: time.Now(),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	if err := s.eventPublisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserRegistered event", zap.Error(err))
	}

	return user, nil
}

func (s *AccountService) validateRegistration(req *RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	role := models.Role(strings.TrimSpace(req.Role))

	switch {
	case name == "":
		return nil, invalidInput("name is required")
	case email == "":
		return nil, invalidInput("email is required")
	case req.Password == "":
		return nil, invalidInput("password is required")
	case !role.Valid():
		return nil, invalidInput("role must be one of renter, owner, admin")
	}

	user := &models.User{
		Name:  name,
		Email: email,
		Role:  role,
	}
	if phone != "" {
		user.Phone = &phone
	}
	return user, nil
}

// Login checks the credentials and opens a session. Unknown email and
// wrong password are reported the same way.
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Login")
	defer span.End()

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		util.LoginsTotal.WithLabelValues("invalid_input").Inc()
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, util.SpanError(span, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if user == nil {
		util.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.CreateSession(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, util.SpanError(span, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))

	event := &models.UserLoggedInEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeUserLoggedIn,
			Timestamp: time.Now(),
		},
		UserID: user.ID,
	}

	if err := s.eventPublisher.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserLoggedIn event", zap.Error(err))
	}

	return &LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.sessionTTL.Seconds()),
		User:      user,
	}, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// ResolveSession returns the user id bound to token
func (s *AccountService) ResolveSession(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}

	userID, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, redisclient.ErrSessionNotFound) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return userID, nil
}
