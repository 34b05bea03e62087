package models

import (
	"time"
)

type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"uniqueIndex;not null;size:50" validate:"required,max=50"`
	Name string `json:"name" gorm:"not null;size:255" validate:"required,max=255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Module struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index;uniqueIndex:idx_subject_module_no"`
	ModuleNo  int    `json:"module_no" gorm:"not null;uniqueIndex:idx_subject_module_no" validate:"min=1"`
	Title     string `json:"title" gorm:"not null;size:255" validate:"required,max=255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Topics  []Topic  `json:"topics,omitempty" gorm:"foreignKey:ModuleID"`
}

func (Module) TableName() string {
	return "modules"
}

type Topic struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ModuleID uint   `json:"module_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255" validate:"required,max=255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Module    *Module    `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TopicID"`
}

func (Topic) TableName() string {
	return "topics"
}
