package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

// ===== SUBJECTS =====

type subjectService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
) SubjectService {
	return &subjectService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *subjectService) Create(ctx context.Context, req *models.SubjectCreateRequest, actor Actor) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Subject().ExistsByCode(ctx, nil, req.Code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject code: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSubject
	}

	subject := &models.Subject{
		Code: req.Code,
		Name: req.Name,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Subject().Create(ctx, nil, subject); err != nil {
			return fmt.Errorf("failed to create subject: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "subject.create", map[string]any{
			"subject_id": subject.ID,
			"code":       subject.Code,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Subject created",
		slog.Uint64("subject_id", uint64(subject.ID)), slog.String("code", subject.Code))
	return subject, nil
}

func (s *subjectService) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *subjectService) List(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.repo.Subject().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *subjectService) Update(ctx context.Context, id uint, req *models.SubjectUpdateRequest, actor Actor) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	subject, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != subject.Code {
		exists, err := s.repo.Subject().ExistsByCode(ctx, nil, *req.Code, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check subject code: %w", err)
		}
		if exists {
			return nil, ErrDuplicateSubject
		}
		subject.Code = *req.Code
	}
	if req.Name != nil {
		subject.Name = *req.Name
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Subject().Update(ctx, nil, subject); err != nil {
			return fmt.Errorf("failed to update subject: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "subject.update", map[string]any{
			"subject_id": subject.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, id uint, actor Actor) error {
	if !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "subject", "delete", "admin role required")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	// The dependents check runs in the same transaction as the delete so a
	// concurrently created module still surfaces as a conflict.
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		hasModules, err := txRepo.Subject().HasModules(ctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to check subject dependents: %w", err)
		}
		if hasModules {
			return &DependentsExistError{Resource: "subject", ID: id, Dependent: "modules"}
		}
		if err := txRepo.Subject().Delete(ctx, nil, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubjectNotFound
			}
			return fmt.Errorf("failed to delete subject: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "subject.delete", map[string]any{
			"subject_id": id,
		})
	})
}

// ===== MODULES =====

type moduleService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewModuleService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
) ModuleService {
	return &moduleService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *moduleService) Create(ctx context.Context, req *models.ModuleCreateRequest, actor Actor) (*models.Module, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	if _, err := s.repo.Module().GetBySubjectAndNo(ctx, nil, req.SubjectID, req.ModuleNo); err == nil {
		return nil, ErrDuplicateModule
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check module number: %w", err)
	}

	module := &models.Module{
		SubjectID: req.SubjectID,
		ModuleNo:  req.ModuleNo,
		Title:     req.Title,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Module().Create(ctx, nil, module); err != nil {
			return fmt.Errorf("failed to create module: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "module.create", map[string]any{
			"module_id":  module.ID,
			"subject_id": module.SubjectID,
			"module_no":  module.ModuleNo,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Module created",
		slog.Uint64("module_id", uint64(module.ID)), slog.Uint64("subject_id", uint64(module.SubjectID)))
	return module, nil
}

func (s *moduleService) GetByID(ctx context.Context, id uint) (*models.Module, error) {
	module, err := s.repo.Module().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

func (s *moduleService) ListBySubject(ctx context.Context, subjectID uint) ([]*models.Module, error) {
	if _, err := s.repo.Subject().GetByID(ctx, nil, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	modules, err := s.repo.Module().GetBySubject(ctx, nil, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (s *moduleService) Update(ctx context.Context, id uint, req *models.ModuleUpdateRequest, actor Actor) (*models.Module, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	module, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ModuleNo != nil && *req.ModuleNo != module.ModuleNo {
		if _, err := s.repo.Module().GetBySubjectAndNo(ctx, nil, module.SubjectID, *req.ModuleNo); err == nil {
			return nil, ErrDuplicateModule
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check module number: %w", err)
		}
		module.ModuleNo = *req.ModuleNo
	}
	if req.Title != nil {
		module.Title = *req.Title
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Module().Update(ctx, nil, module); err != nil {
			return fmt.Errorf("failed to update module: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "module.update", map[string]any{
			"module_id": module.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (s *moduleService) Delete(ctx context.Context, id uint, actor Actor) error {
	if !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "module", "delete", "admin role required")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		hasTopics, err := txRepo.Module().HasTopics(ctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to check module dependents: %w", err)
		}
		if hasTopics {
			return &DependentsExistError{Resource: "module", ID: id, Dependent: "topics"}
		}
		if err := txRepo.Module().Delete(ctx, nil, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrModuleNotFound
			}
			return fmt.Errorf("failed to delete module: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "module.delete", map[string]any{
			"module_id": id,
		})
	})
}

// ===== TOPICS =====

type topicService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTopicService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
) TopicService {
	return &topicService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *topicService) Create(ctx context.Context, req *models.TopicCreateRequest, actor Actor) (*models.Topic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Module().GetByID(ctx, nil, req.ModuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	if _, err := s.repo.Topic().GetByModuleAndName(ctx, nil, req.ModuleID, req.Name); err == nil {
		return nil, ErrDuplicateTopic
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check topic name: %w", err)
	}

	topic := &models.Topic{
		ModuleID: req.ModuleID,
		Name:     req.Name,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Topic().Create(ctx, nil, topic); err != nil {
			return fmt.Errorf("failed to create topic: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "topic.create", map[string]any{
			"topic_id":  topic.ID,
			"module_id": topic.ModuleID,
		})
	})
	if err != nil {
		return nil, err
	}

	return topic, nil
}

func (s *topicService) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	topic, err := s.repo.Topic().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return topic, nil
}

func (s *topicService) ListByModule(ctx context.Context, moduleID uint) ([]*models.Topic, error) {
	if _, err := s.repo.Module().GetByID(ctx, nil, moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	topics, err := s.repo.Topic().GetByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

func (s *topicService) Update(ctx context.Context, id uint, req *models.TopicUpdateRequest, actor Actor) (*models.Topic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	topic, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != topic.Name {
		if _, err := s.repo.Topic().GetByModuleAndName(ctx, nil, topic.ModuleID, *req.Name); err == nil {
			return nil, ErrDuplicateTopic
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check topic name: %w", err)
		}
		topic.Name = *req.Name
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Topic().Update(ctx, nil, topic); err != nil {
			return fmt.Errorf("failed to update topic: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "topic.update", map[string]any{
			"topic_id": topic.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) Delete(ctx context.Context, id uint, actor Actor) error {
	if !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "topic", "delete", "admin role required")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		hasQuestions, err := txRepo.Topic().HasQuestions(ctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to check topic dependents: %w", err)
		}
		if hasQuestions {
			return &DependentsExistError{Resource: "topic", ID: id, Dependent: "questions"}
		}
		if err := txRepo.Topic().Delete(ctx, nil, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return fmt.Errorf("failed to delete topic: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "topic.delete", map[string]any{
			"topic_id": id,
		})
	})
}
