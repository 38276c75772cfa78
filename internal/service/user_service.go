package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 8
)

// UserService управляет учетными записями.
type UserService struct {
	users  interfaces.UserRepository
	logger *zap.Logger
}

func NewUserService(users interfaces.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger.Named("user_service")}
}

// Register создает пользователя с bcrypt-хешем пароля.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	logFields := []zap.Field{zap.String("username", username)}

	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, fmt.Errorf("%w: username must be between %d and %d characters", models.ErrValidation, minUsernameLength, maxUsernameLength)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, models.ErrUserAlreadyExists) {
			s.logger.Warn("Registration attempt for existing username", logFields...)
		} else {
			s.logger.Error("Failed to create user", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	s.logger.Info("User registered", append(logFields, zap.Int64("user_id", user.ID))...)
	return user, nil
}

// Authenticate проверяет пароль пользователя.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// EnsureUser создает пользователя, если такого еще нет. Пароль существующего пользователя не меняется.
func (s *UserService) EnsureUser(ctx context.Context, username, password string) (created bool, err error) {
	_, err = s.Register(ctx, username, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrUserAlreadyExists):
		return false, nil
	default:
		return false, err
	}
}
