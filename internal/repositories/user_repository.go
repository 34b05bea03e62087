package repositories

import (
	"context"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository owns the local user store. Users are deactivated rather than
// deleted, so there is no Delete.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.User, int64, error)
	SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error

	// Validation
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
