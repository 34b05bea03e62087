package models

import (
	"time"
)

// ===== AUTH DTOs =====

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}

type UserCreateRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=100"`
	Password string   `json:"password" validate:"required,min=6,max=72"`
	Role     UserRole `json:"role" validate:"required,user_role"`
}

type UserActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ===== HIERARCHY DTOs =====

type SubjectCreateRequest struct {
	Code string `json:"code" validate:"required,min=1,max=50"`
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type SubjectUpdateRequest struct {
	Code *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

type ModuleCreateRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required"`
	ModuleNo  int    `json:"module_no" validate:"required,min=1"`
	Title     string `json:"title" validate:"required,min=1,max=255"`
}

type ModuleUpdateRequest struct {
	ModuleNo *int    `json:"module_no" validate:"omitempty,min=1"`
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
}

type TopicCreateRequest struct {
	ModuleID uint   `json:"module_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

type TopicUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

// ===== QUESTION DTOs =====

type QuestionCreateRequest struct {
	TopicID        uint            `json:"topic_id" validate:"required"`
	Text           string          `json:"text" validate:"required"`
	Marks          int             `json:"marks" validate:"omitempty,min=1,max=100"`
	Difficulty     DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	CognitiveLevel CognitiveLevel  `json:"cognitive_level" validate:"required,cognitive_level"`
	COTags         []string        `json:"co_tags" validate:"omitempty,dive,max=20"`
	POTags         []string        `json:"po_tags" validate:"omitempty,dive,max=20"`
}

type QuestionUpdateRequest struct {
	TopicID        *uint            `json:"topic_id"`
	Text           *string          `json:"text" validate:"omitempty,min=1"`
	Marks          *int             `json:"marks" validate:"omitempty,min=1,max=100"`
	Difficulty     *DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	CognitiveLevel *CognitiveLevel  `json:"cognitive_level" validate:"omitempty,cognitive_level"`
	COTags         []string         `json:"co_tags" validate:"omitempty,dive,max=20"`
	POTags         []string         `json:"po_tags" validate:"omitempty,dive,max=20"`
}

// ListQuestionsParams carries the composable search filters. All filters are
// optional and combine with AND.
type ListQuestionsParams struct {
	Page           int              `json:"page" validate:"min=0"`
	Size           int              `json:"size" validate:"omitempty,min=1,max=100"`
	SubjectID      *uint            `json:"subject_id"`
	ModuleID       *uint            `json:"module_id"`
	TopicID        *uint            `json:"topic_id"`
	Difficulty     *DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	CognitiveLevel *CognitiveLevel  `json:"cognitive_level" validate:"omitempty,cognitive_level"`
	CO             *string          `json:"co"`
	PO             *string          `json:"po"`
	Search         string           `json:"search"`
}

type QuestionResponse struct {
	Question
	SubjectName string `json:"subject_name,omitempty"`
	ModuleTitle string `json:"module_title,omitempty"`
	TopicName   string `json:"topic_name,omitempty"`
	CanEdit     bool   `json:"can_edit"`
	CanDelete   bool   `json:"can_delete"`
}

type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

// ===== IMPORT/EXPORT DTOs =====

type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	TotalRows int              `json:"total_rows"`
	Created   int              `json:"created"`
	Errors    []ImportRowError `json:"errors,omitempty"`
}

// ===== PAPER DTOs =====

type PaperRequest struct {
	SubjectID   uint       `json:"subject_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=255"`
	ExamDate    *time.Time `json:"exam_date"`
	DurationMin int        `json:"duration_min" validate:"min=0,max=600"`

	// Either an explicit question list or per-difficulty quotas.
	QuestionIDs []uint         `json:"question_ids" validate:"omitempty,min=1"`
	Counts      map[string]int `json:"counts" validate:"omitempty"`
	CO          *string        `json:"co"`
}

// ===== ANALYTICS DTOs =====

type AnalyticsResponse struct {
	Dimension string           `json:"dimension"`
	Counts    map[string]int64 `json:"counts"`
}

type SubjectSummary struct {
	SubjectID    uint             `json:"subject_id"`
	SubjectCode  string           `json:"subject_code"`
	SubjectName  string           `json:"subject_name"`
	Total        int64            `json:"total"`
	ByDifficulty map[string]int64 `json:"by_difficulty"`
}

// ===== ACTIVITY LOG DTOs =====

type ActivityLogEntry struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityLogListResponse struct {
	Entries []ActivityLogEntry `json:"entries"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Size    int                `json:"size"`
}
