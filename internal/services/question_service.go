package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/question-bank-service/internal/events"
	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"github.com/SAP-F-2025/question-bank-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    *events.Publisher
}

func NewQuestionService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher *events.Publisher,
) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    publisher,
	}
}

func (s *questionService) Create(ctx context.Context, req *models.QuestionCreateRequest, actor Actor) (*models.QuestionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Topic().GetByID(ctx, nil, req.TopicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	exists, err := s.repo.Question().ExistsByTextInTopic(ctx, nil, req.TopicID, req.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check question text: %w", err)
	}
	if exists {
		return nil, ErrDuplicateQuestion
	}

	marks := req.Marks
	if marks == 0 {
		marks = 1
	}

	question := &models.Question{
		TopicID:        req.TopicID,
		Text:           req.Text,
		Marks:          marks,
		Difficulty:     req.Difficulty,
		CognitiveLevel: req.CognitiveLevel,
		COTags:         tagsToJSON(req.COTags),
		POTags:         tagsToJSON(req.POTags),
		CreatedBy:      actor.ID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Create(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "question.create", map[string]any{
			"question_id": question.ID,
			"topic_id":    question.TopicID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.QuestionEvent{
		Type:       "created",
		QuestionID: question.ID,
		ActorID:    actor.ID,
	})

	s.logger.InfoContext(ctx, "Question created",
		slog.Uint64("question_id", uint64(question.ID)), slog.Uint64("actor_id", uint64(actor.ID)))

	return s.GetByID(ctx, question.ID, actor)
}

func (s *questionService) GetByID(ctx context.Context, id uint, actor Actor) (*models.QuestionResponse, error) {
	question, err := s.repo.Question().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return s.buildQuestionResponse(question, actor), nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *models.QuestionUpdateRequest, actor Actor) (*models.QuestionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateQuestionUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if !actor.IsAdmin() && question.CreatedBy != actor.ID {
		return nil, NewPermissionError(actor.ID, id, "question", "update", "not owner")
	}

	if req.TopicID != nil && *req.TopicID != question.TopicID {
		if _, err := s.repo.Topic().GetByID(ctx, nil, *req.TopicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTopicNotFound
			}
			return nil, fmt.Errorf("failed to get topic: %w", err)
		}
		question.TopicID = *req.TopicID
	}
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Text != nil || req.TopicID != nil {
		exists, err := s.repo.Question().ExistsByTextInTopic(ctx, nil, question.TopicID, question.Text, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check question text: %w", err)
		}
		if exists {
			return nil, ErrDuplicateQuestion
		}
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.CognitiveLevel != nil {
		question.CognitiveLevel = *req.CognitiveLevel
	}
	if req.COTags != nil {
		question.COTags = tagsToJSON(req.COTags)
	}
	if req.POTags != nil {
		question.POTags = tagsToJSON(req.POTags)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Update(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "question.update", map[string]any{
			"question_id": question.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.QuestionEvent{
		Type:       "updated",
		QuestionID: question.ID,
		ActorID:    actor.ID,
	})

	return s.GetByID(ctx, id, actor)
}

func (s *questionService) Delete(ctx context.Context, id uint, actor Actor) error {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if !actor.IsAdmin() && question.CreatedBy != actor.ID {
		return NewPermissionError(actor.ID, id, "question", "delete", "not owner")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Delete(ctx, nil, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to delete question: %w", err)
		}
		return logActivity(ctx, txRepo, actor.ID, "question.delete", map[string]any{
			"question_id": id,
		})
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.QuestionEvent{
		Type:       "deleted",
		QuestionID: id,
		ActorID:    actor.ID,
	})

	s.logger.InfoContext(ctx, "Question deleted",
		slog.Uint64("question_id", uint64(id)), slog.Uint64("actor_id", uint64(actor.ID)))
	return nil
}

func (s *questionService) List(ctx context.Context, params models.ListQuestionsParams, actor Actor) (*models.QuestionListResponse, error) {
	if err := s.validator.Validate(&params); err != nil {
		return nil, err
	}

	limit, offset := pageToLimitOffset(params.Page, params.Size)

	filters := repositories.QuestionFilters{
		SubjectID:      params.SubjectID,
		ModuleID:       params.ModuleID,
		TopicID:        params.TopicID,
		Difficulty:     params.Difficulty,
		CognitiveLevel: params.CognitiveLevel,
		CO:             params.CO,
		PO:             params.PO,
		Search:         params.Search,
		Limit:          limit,
		Offset:         offset,
	}

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	responses := make([]models.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, *s.buildQuestionResponse(q, actor))
	}

	return &models.QuestionListResponse{
		Questions: responses,
		Total:     total,
		Page:      offset/limit + 1,
		Size:      limit,
	}, nil
}

func (s *questionService) buildQuestionResponse(question *models.Question, actor Actor) *models.QuestionResponse {
	resp := &models.QuestionResponse{
		Question:  *question,
		CanEdit:   actor.IsAdmin() || question.CreatedBy == actor.ID,
		CanDelete: actor.IsAdmin() || question.CreatedBy == actor.ID,
	}
	if question.Topic != nil {
		resp.TopicName = question.Topic.Name
		if question.Topic.Module != nil {
			resp.ModuleTitle = question.Topic.Module.Title
			if question.Topic.Module.Subject != nil {
				resp.SubjectName = question.Topic.Module.Subject.Name
			}
		}
	}
	return resp
}

// publishEvent is fire-and-forget. A broker outage must never fail the
// mutation that already committed.
func (s *questionService) publishEvent(ctx context.Context, event events.QuestionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishQuestionEvent(event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish question event",
			slog.String("type", event.Type), slog.String("error", err.Error()))
	}
}

func tagsToJSON(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	payload, _ := json.Marshal(tags)
	return datatypes.JSON(payload)
}
