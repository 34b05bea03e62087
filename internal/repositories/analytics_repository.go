package repositories

import (
	"context"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"gorm.io/gorm"
)

// AnalyticsRepository provides read-side aggregation over the question store.
// Counts reflect repository state at call time.
type AnalyticsRepository interface {
	CountBySubject(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountByDifficulty(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountByCognitiveLevel(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountByCO(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountByPO(ctx context.Context, tx *gorm.DB) (map[string]int64, error)

	SubjectSummaries(ctx context.Context, tx *gorm.DB) ([]*models.SubjectSummary, error)
}
