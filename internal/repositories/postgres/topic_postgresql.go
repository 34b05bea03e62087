package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type TopicPostgreSQL struct {
	db *gorm.DB
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{db: db}
}

func (t *TopicPostgreSQL) Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Create(topic).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

func (t *TopicPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error) {
	db := t.getDB(tx)
	var topic models.Topic
	if err := db.WithContext(ctx).First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

// GetByIDWithHierarchy loads the topic with its module and subject so callers
// can resolve the full chain in one query.
func (t *TopicPostgreSQL) GetByIDWithHierarchy(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error) {
	db := t.getDB(tx)
	var topic models.Topic
	if err := db.WithContext(ctx).
		Preload("Module").
		Preload("Module.Subject").
		First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get topic with hierarchy: %w", err)
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) GetByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*models.Topic, error) {
	db := t.getDB(tx)
	var topics []*models.Topic
	if err := db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("name ASC").
		Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to list topics by module: %w", err)
	}
	return topics, nil
}

func (t *TopicPostgreSQL) GetByModuleAndName(ctx context.Context, tx *gorm.DB, moduleID uint, name string) (*models.Topic, error) {
	db := t.getDB(tx)
	var topic models.Topic
	if err := db.WithContext(ctx).
		Where("module_id = ? AND name = ?", moduleID, name).
		First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get topic by name: %w", err)
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) Update(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(topic).Error; err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	return nil
}

func (t *TopicPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := t.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Topic{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete topic: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TopicPostgreSQL) HasQuestions(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := t.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("topic_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check topic questions: %w", err)
	}
	return count > 0, nil
}

func (t *TopicPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}
