package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/question-bank-service/internal/auth"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

// dummyHash keeps the bcrypt cost identical for unknown usernames and wrong
// passwords, so both failure modes are indistinguishable from the outside.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5sNb2KXWp5g4XhJ5p9C1a3q3vW1u1cS"

type authService struct {
	repo      repositories.Repository
	jwt       *auth.JWTManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(
	repo repositories.Repository,
	jwtManager *auth.JWTManager,
	logger *slog.Logger,
	validator *validator.Validator,
) AuthService {
	return &authService{
		repo:      repo,
		jwt:       jwtManager,
		logger:    logger,
		validator: validator,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.VerifyPassword(dummyHash, req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := logActivity(ctx, s.repo, user.ID, "login", nil); err != nil {
		s.logger.WarnContext(ctx, "Failed to record login activity",
			slog.Uint64("user_id", uint64(user.ID)), slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "User logged in",
		slog.String("username", user.Username), slog.String("role", string(user.Role)))

	return &models.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: models.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
			IsActive: user.IsActive,
		},
	}, nil
}
