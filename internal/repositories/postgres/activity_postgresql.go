package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type ActivityLogPostgreSQL struct {
	db *gorm.DB
}

func NewActivityLogPostgreSQL(db *gorm.DB) repositories.ActivityLogRepository {
	return &ActivityLogPostgreSQL{db: db}
}

// Append inserts one log entry. There is no update or delete path.
func (a *ActivityLogPostgreSQL) Append(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// List returns entries newest first with the actor preloaded.
func (a *ActivityLogPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.ActivityLog, int64, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Model(&models.ActivityLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	query = query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username")
		}).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []*models.ActivityLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return entries, total, nil
}

func (a *ActivityLogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
