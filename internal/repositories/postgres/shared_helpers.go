package postgres

import (
	"strings"

	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains query helpers shared across the question-bank
// repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyQuestionFilters applies the composable search filters. Subject and
// module filters resolve through the topic hierarchy with joins; all
// predicates combine with AND.
func (h *SharedHelpers) ApplyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.SubjectID != nil || filters.ModuleID != nil {
		query = query.Joins("JOIN topics ON topics.id = questions.topic_id")
	}
	if filters.SubjectID != nil {
		query = query.
			Joins("JOIN modules ON modules.id = topics.module_id").
			Where("modules.subject_id = ?", *filters.SubjectID)
	}
	if filters.ModuleID != nil {
		query = query.Where("topics.module_id = ?", *filters.ModuleID)
	}
	if filters.TopicID != nil {
		query = query.Where("questions.topic_id = ?", *filters.TopicID)
	}
	if filters.Difficulty != nil {
		query = query.Where("questions.difficulty = ?", *filters.Difficulty)
	}
	if filters.CognitiveLevel != nil {
		query = query.Where("questions.cognitive_level = ?", *filters.CognitiveLevel)
	}
	if filters.CO != nil {
		query = query.Where("questions.co_tags::text LIKE ?", "%\""+*filters.CO+"\"%")
	}
	if filters.PO != nil {
		query = query.Where("questions.po_tags::text LIKE ?", "%\""+*filters.PO+"\"%")
	}
	if filters.CreatedBy != nil {
		query = query.Where("questions.created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		searchTerm := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(questions.text) LIKE ?", searchTerm)
	}

	return query
}

// ApplyPagination applies limit/offset when set.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
