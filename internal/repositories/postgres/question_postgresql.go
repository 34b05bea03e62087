package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/cache"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates cache
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID)

	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, gorm.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}

	return &question, nil
}

// GetByIDWithDetails retrieves a question with its full hierarchy and creator
func (q *QuestionPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Preload("Topic").
		Preload("Topic.Module").
		Preload("Topic.Module.Subject").
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, role, is_active")
		}).
		First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get question with details: %w", err)
	}
	return &question, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID)

	return nil
}

// Delete removes a question. Questions are leaves of the hierarchy, so the
// delete is unconditional.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id)

	return nil
}

// ===== BULK OPERATIONS =====

// CreateBatch creates multiple questions in a batch
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := q.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Analytics, "*")

	return nil
}

// GetByIDs retrieves multiple questions by their IDs
func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by IDs: %w", err)
	}

	return questions, nil
}

// ===== QUERY OPERATIONS =====

// List retrieves questions with filtering and pagination. Order is fixed at
// created_at DESC, id DESC so pages are stable.
func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Question{})

	query = q.helpers.ApplyQuestionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = query.
		Preload("Topic").
		Preload("Topic.Module").
		Preload("Topic.Module.Subject").
		Order("questions.created_at DESC, questions.id DESC")
	query = q.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// GetPaperPool retrieves the candidate questions for one difficulty bucket.
// Order is created_at ASC, id ASC: the oldest matching questions fill the
// quota first, which keeps assembly deterministic.
func (q *QuestionPostgreSQL) GetPaperPool(ctx context.Context, tx *gorm.DB, filters repositories.PaperPoolFilters) ([]*models.Question, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Question{}).
		Joins("JOIN topics ON topics.id = questions.topic_id").
		Joins("JOIN modules ON modules.id = topics.module_id").
		Where("modules.subject_id = ?", filters.SubjectID).
		Where("questions.difficulty = ?", filters.Difficulty)

	if filters.CO != nil {
		query = query.Where("questions.co_tags::text LIKE ?", "%\""+*filters.CO+"\"%")
	}
	if len(filters.ExcludeIDs) > 0 {
		query = query.Where("questions.id NOT IN ?", filters.ExcludeIDs)
	}

	query = query.Order("questions.created_at ASC, questions.id ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get paper pool: %w", err)
	}

	return questions, nil
}

// ===== VALIDATION AND CHECKS =====

// ExistsByTextInTopic checks if a question with the same text already exists
// in the topic
func (q *QuestionPostgreSQL) ExistsByTextInTopic(ctx context.Context, tx *gorm.DB, topicID uint, text string, excludeID *uint) (bool, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("topic_id = ? AND text = ?", topicID, text)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check question text existence: %w", err)
	}

	return count > 0, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
