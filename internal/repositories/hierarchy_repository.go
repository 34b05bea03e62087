package repositories

import (
	"context"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"gorm.io/gorm"
)

// The hierarchy repositories cover Subject -> Module -> Topic. Deletion of a
// node with dependents is rejected by the service layer; HasX checks exist to
// support that rule.

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Subject, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Validation
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error)
	HasModules(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type ModuleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, module *models.Module) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Module, error)
	GetBySubjectAndNo(ctx context.Context, tx *gorm.DB, subjectID uint, moduleNo int) (*models.Module, error)
	Update(ctx context.Context, tx *gorm.DB, module *models.Module) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Validation
	HasTopics(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type TopicRepository interface {
	Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error)
	GetByIDWithHierarchy(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error)
	GetByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*models.Topic, error)
	GetByModuleAndName(ctx context.Context, tx *gorm.DB, moduleID uint, name string) (*models.Topic, error)
	Update(ctx context.Context, tx *gorm.DB, topic *models.Topic) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Validation
	HasQuestions(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}
