package repositories

import (
	"context"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"gorm.io/gorm"
)

// QuestionFilters are the composable search filters. All fields are optional
// and combine with AND. Results are always ordered created_at DESC, id DESC.
type QuestionFilters struct {
	SubjectID      *uint
	ModuleID       *uint
	TopicID        *uint
	Difficulty     *models.DifficultyLevel
	CognitiveLevel *models.CognitiveLevel
	CO             *string
	PO             *string
	Search         string
	CreatedBy      *uint

	Limit  int
	Offset int
}

// PaperPoolFilters select the candidate pool for a single difficulty bucket
// during paper assembly. Pool order is created_at ASC, id ASC so quota fill
// is deterministic.
type PaperPoolFilters struct {
	SubjectID  uint
	Difficulty models.DifficultyLevel
	CO         *string
	ExcludeIDs []uint
	Limit      int
}

type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetPaperPool(ctx context.Context, tx *gorm.DB, filters PaperPoolFilters) ([]*models.Question, error)

	// Validation and checks
	ExistsByTextInTopic(ctx context.Context, tx *gorm.DB, topicID uint, text string, excludeID *uint) (bool, error)
}
