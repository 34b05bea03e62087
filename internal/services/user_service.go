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

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) Create(ctx context.Context, req *models.UserCreateRequest, actor Actor) (*models.UserInfo, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, 0, "user", "create", "admin role required")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByUsername(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "user.create", map[string]any{
			"username": user.Username,
			"role":     string(user.Role),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User created",
		slog.String("username", user.Username), slog.String("role", string(user.Role)),
		slog.Uint64("actor_id", uint64(actor.ID)))

	info := toUserInfo(user)
	return &info, nil
}

func (s *userService) List(ctx context.Context, page, size int) ([]models.UserInfo, int64, error) {
	limit, offset := pageToLimitOffset(page, size)

	users, total, err := s.repo.User().List(ctx, nil, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	infos := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, toUserInfo(u))
	}
	return infos, total, nil
}

func (s *userService) SetActive(ctx context.Context, id uint, active bool, actor Actor) error {
	if !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "user", "set_active", "admin role required")
	}

	// Deactivating your own account would lock the session out mid-flight.
	if id == actor.ID && !active {
		return NewPermissionError(actor.ID, id, "user", "set_active", "cannot deactivate own account")
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().SetActive(ctx, nil, id, active); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to update user state: %w", err)
		}
		action := "user.deactivate"
		if active {
			action = "user.activate"
		}
		return logActivity(ctx, txRepo, actor.ID, action, map[string]any{
			"user_id": id,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "User state changed",
		slog.Uint64("user_id", uint64(id)), slog.Bool("active", active),
		slog.Uint64("actor_id", uint64(actor.ID)))
	return nil
}

func (s *userService) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.repo.User().Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	admin := &models.User{
		Username:     defaultAdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User().Create(ctx, nil, admin); err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	s.logger.WarnContext(ctx, "Seeded default admin account, change its password",
		slog.String("username", defaultAdminUsername))
	return nil
}

func toUserInfo(u *models.User) models.UserInfo {
	return models.UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
