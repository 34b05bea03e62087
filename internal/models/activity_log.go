package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is append-only: rows are inserted by the service layer on every
// mutating operation and are never updated or deleted.
type ActivityLog struct {
	ID      uint           `json:"id" gorm:"primaryKey"`
	UserID  uint           `json:"user_id" gorm:"not null;index"`
	Action  string         `json:"action" gorm:"not null;size:255"`
	Details datatypes.JSON `json:"details,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
