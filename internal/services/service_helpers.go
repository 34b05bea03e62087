package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageToLimitOffset normalizes 1-based page parameters into a limit/offset
// pair, clamping the page size to maxPageSize.
func pageToLimitOffset(page, size int) (limit, offset int) {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// jsonToTags decodes a JSONB string array column into a tag slice. Malformed
// payloads decode to an empty slice rather than failing a read path.
func jsonToTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

// logActivity appends an audit record. Callers inside WithTransaction pass
// the transactional repository so the audit row commits with the change it
// describes.
func logActivity(ctx context.Context, repo repositories.Repository, userID uint, action string, details map[string]any) error {
	entry := &models.ActivityLog{
		UserID: userID,
		Action: action,
	}
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode activity details: %w", err)
		}
		entry.Details = datatypes.JSON(payload)
	}
	if err := repo.ActivityLog().Append(ctx, nil, entry); err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}
