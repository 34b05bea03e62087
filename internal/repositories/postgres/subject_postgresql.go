package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	var subject models.Subject
	if err := db.WithContext(ctx).First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Subject, error) {
	db := s.getDB(tx)
	var subject models.Subject
	if err := db.WithContext(ctx).Where("code = ?", code).First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get subject by code: %w", err)
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error) {
	db := s.getDB(tx)
	var subjects []*models.Subject
	if err := db.WithContext(ctx).Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(subject).Error; err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	return nil
}

func (s *SubjectPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Subject{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *SubjectPostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Subject{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subject code existence: %w", err)
	}
	return count > 0, nil
}

func (s *SubjectPostgreSQL) HasModules(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := s.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Module{}).
		Where("subject_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subject modules: %w", err)
	}
	return count > 0, nil
}

func (s *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
