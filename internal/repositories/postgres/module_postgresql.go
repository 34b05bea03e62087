package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type ModulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db}
}

func (m *ModulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(module).Error; err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

func (m *ModulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error) {
	db := m.getDB(tx)
	var module models.Module
	if err := db.WithContext(ctx).First(&module, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return &module, nil
}

func (m *ModulePostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Module, error) {
	db := m.getDB(tx)
	var modules []*models.Module
	if err := db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("module_no ASC").
		Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("failed to list modules by subject: %w", err)
	}
	return modules, nil
}

func (m *ModulePostgreSQL) GetBySubjectAndNo(ctx context.Context, tx *gorm.DB, subjectID uint, moduleNo int) (*models.Module, error) {
	db := m.getDB(tx)
	var module models.Module
	if err := db.WithContext(ctx).
		Where("subject_id = ? AND module_no = ?", subjectID, moduleNo).
		First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get module by number: %w", err)
	}
	return &module, nil
}

func (m *ModulePostgreSQL) Update(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Save(module).Error; err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}
	return nil
}

func (m *ModulePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := m.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Module{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete module: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *ModulePostgreSQL) HasTopics(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := m.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("module_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check module topics: %w", err)
	}
	return count > 0, nil
}

func (m *ModulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}
