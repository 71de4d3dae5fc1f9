package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/users/repositories"
	"bursary-portal-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService is the account store behind the gateway's auth calls.
type AuthService struct {
	Users repositories.UserRepository
	now   func() time.Time
}

func NewAuthService(users repositories.UserRepository) *AuthService {
	return &AuthService{Users: users, now: time.Now}
}

func (s *AuthService) SignUp(ctx context.Context, req gateway.SignUpRequest) (*models.Principal, error) {
	if err := ValidateSignUp(req); err != nil {
		return nil, err
	}

	user, err := s.Users.CreateUser(ctx, &models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Phone:    utils.NonEmptyStringPtr(strings.TrimSpace(req.Phone)),
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("Account created", zap.String("user_id", user.ID.String()))
	return user.Principal(), nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	user, err := s.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, gateway.ErrNotFound) {
		config.Logger.Warn("Login attempt: unknown email", zap.String("email", email))
		return nil, gateway.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.Active || !repositories.CheckPasswordHash(password, user.Password) {
		config.Logger.Warn("Login attempt: invalid password or disabled account", zap.String("user_id", user.ID.String()))
		return nil, gateway.ErrInvalidCredentials
	}

	if err := s.Users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		config.Logger.Warn("Failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return user.Principal(), nil
}

// GetPrincipal loads an active account. Disabled accounts look missing.
func (s *AuthService) GetPrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	user, err := s.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, gateway.ErrNotFound
	}
	return user.Principal(), nil
}
