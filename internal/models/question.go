package models

import (
	"time"

	"gorm.io/datatypes"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// DifficultyLevels is the fixed bucket order used by paper assembly and
// import validation.
var DifficultyLevels = []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d DifficultyLevel) Valid() bool {
	for _, l := range DifficultyLevels {
		if d == l {
			return true
		}
	}
	return false
}

type CognitiveLevel string

const (
	CognitiveRemember   CognitiveLevel = "Remember"
	CognitiveUnderstand CognitiveLevel = "Understand"
	CognitiveApply      CognitiveLevel = "Apply"
	CognitiveAnalyze    CognitiveLevel = "Analyze"
	CognitiveEvaluate   CognitiveLevel = "Evaluate"
	CognitiveCreate     CognitiveLevel = "Create"
)

var CognitiveLevels = []CognitiveLevel{
	CognitiveRemember,
	CognitiveUnderstand,
	CognitiveApply,
	CognitiveAnalyze,
	CognitiveEvaluate,
	CognitiveCreate,
}

func (c CognitiveLevel) Valid() bool {
	for _, l := range CognitiveLevels {
		if c == l {
			return true
		}
	}
	return false
}

type Question struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	TopicID uint   `json:"topic_id" gorm:"not null;index"`
	Text    string `json:"text" gorm:"type:text;not null" validate:"required"`
	Marks   int    `json:"marks" gorm:"default:1" validate:"min=1,max=100"`

	// Categorization
	Difficulty     DifficultyLevel `json:"difficulty" gorm:"not null;size:20;index"`
	CognitiveLevel CognitiveLevel  `json:"cognitive_level" gorm:"not null;size:20;index"`

	// Accreditation tags stored as JSONB string arrays
	COTags datatypes.JSON `json:"co_tags" gorm:"type:jsonb"` // []string
	POTags datatypes.JSON `json:"po_tags" gorm:"type:jsonb"` // []string

	// Metadata
	CreatedBy uint      `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Topic   *Topic `json:"topic,omitempty" gorm:"foreignKey:TopicID"`
	Creator *User  `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Question) TableName() string {
	return "questions"
}
