package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
)

type activityLogService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewActivityLogService(repo repositories.Repository, logger *slog.Logger) ActivityLogService {
	return &activityLogService{repo: repo, logger: logger}
}

func (s *activityLogService) List(ctx context.Context, page, size int, actor Actor) (*models.ActivityLogListResponse, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, 0, "activity_log", "list", "admin role required")
	}

	limit, offset := pageToLimitOffset(page, size)

	logs, total, err := s.repo.ActivityLog().List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}

	entries := make([]models.ActivityLogEntry, 0, len(logs))
	for _, l := range logs {
		entry := models.ActivityLogEntry{
			ID:        l.ID,
			Action:    l.Action,
			CreatedAt: l.CreatedAt,
		}
		if l.User != nil {
			entry.Username = l.User.Username
		}
		entries = append(entries, entry)
	}

	return &models.ActivityLogListResponse{
		Entries: entries,
		Total:   total,
		Page:    offset/limit + 1,
		Size:    limit,
	}, nil
}
