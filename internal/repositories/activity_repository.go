package repositories

import (
	"context"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"gorm.io/gorm"
)

// ActivityLogRepository is append-only: entries are created and listed, never
// updated or deleted.
type ActivityLogRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.ActivityLog, int64, error)
}
