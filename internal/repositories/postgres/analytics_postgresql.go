package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

type categoryCount struct {
	Category string
	Count    int64
}

// CountBySubject groups question counts by subject code.
func (a *AnalyticsPostgreSQL) CountBySubject(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	db := a.getDB(tx)
	var results []categoryCount
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("subjects.code AS category, COUNT(*) AS count").
		Joins("JOIN topics ON topics.id = questions.topic_id").
		Joins("JOIN modules ON modules.id = topics.module_id").
		Joins("JOIN subjects ON subjects.id = modules.subject_id").
		Group("subjects.code").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions by subject: %w", err)
	}
	return toCountMap(results), nil
}

func (a *AnalyticsPostgreSQL) CountByDifficulty(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return a.countByColumn(ctx, tx, "difficulty")
}

func (a *AnalyticsPostgreSQL) CountByCognitiveLevel(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return a.countByColumn(ctx, tx, "cognitive_level")
}

// CountByCO expands the JSONB tag array so each tag counts once per question.
func (a *AnalyticsPostgreSQL) CountByCO(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return a.countByTagColumn(ctx, tx, "co_tags")
}

func (a *AnalyticsPostgreSQL) CountByPO(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return a.countByTagColumn(ctx, tx, "po_tags")
}

// SubjectSummaries returns per-subject totals with a difficulty breakdown.
func (a *AnalyticsPostgreSQL) SubjectSummaries(ctx context.Context, tx *gorm.DB) ([]*models.SubjectSummary, error) {
	db := a.getDB(tx)

	var rows []struct {
		SubjectID   uint
		SubjectCode string
		SubjectName string
		Difficulty  string
		Count       int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Subject{}).
		Select("subjects.id AS subject_id, subjects.code AS subject_code, subjects.name AS subject_name, questions.difficulty AS difficulty, COUNT(questions.id) AS count").
		Joins("LEFT JOIN modules ON modules.subject_id = subjects.id").
		Joins("LEFT JOIN topics ON topics.module_id = modules.id").
		Joins("LEFT JOIN questions ON questions.topic_id = topics.id").
		Group("subjects.id, subjects.code, subjects.name, questions.difficulty").
		Order("subjects.code ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to build subject summaries: %w", err)
	}

	byID := make(map[uint]*models.SubjectSummary)
	var summaries []*models.SubjectSummary
	for _, row := range rows {
		summary, ok := byID[row.SubjectID]
		if !ok {
			summary = &models.SubjectSummary{
				SubjectID:    row.SubjectID,
				SubjectCode:  row.SubjectCode,
				SubjectName:  row.SubjectName,
				ByDifficulty: make(map[string]int64),
			}
			byID[row.SubjectID] = summary
			summaries = append(summaries, summary)
		}
		// Subjects without questions produce a NULL difficulty row
		if row.Difficulty != "" {
			summary.ByDifficulty[row.Difficulty] = row.Count
			summary.Total += row.Count
		}
	}

	return summaries, nil
}

func (a *AnalyticsPostgreSQL) countByColumn(ctx context.Context, tx *gorm.DB, column string) (map[string]int64, error) {
	db := a.getDB(tx)
	var results []categoryCount
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select(column+" AS category, COUNT(*) AS count").
		Group(column).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions by %s: %w", column, err)
	}
	return toCountMap(results), nil
}

func (a *AnalyticsPostgreSQL) countByTagColumn(ctx context.Context, tx *gorm.DB, column string) (map[string]int64, error) {
	db := a.getDB(tx)
	var results []categoryCount
	query := fmt.Sprintf(
		"SELECT tag AS category, COUNT(*) AS count FROM questions, jsonb_array_elements_text(%s) AS tag GROUP BY tag",
		column)
	if err := db.WithContext(ctx).Raw(query).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions by %s: %w", column, err)
	}
	return toCountMap(results), nil
}

func toCountMap(results []categoryCount) map[string]int64 {
	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Category] = r.Count
	}
	return counts
}

func (a *AnalyticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
