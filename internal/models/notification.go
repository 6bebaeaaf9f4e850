package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationTestPublished   NotificationType = "TEST_PUBLISHED"
	NotificationResultPublished NotificationType = "RESULT_PUBLISHED"
	NotificationStudentWelcome  NotificationType = "STUDENT_WELCOME"
	NotificationStaffWelcome    NotificationType = "STAFF_WELCOME"
	NotificationGeneral         NotificationType = "GENERAL"
)

type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is an in-app notification row. A nil UserID means the row is
// a global broadcast visible to every student.
type Notification struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID *uint `json:"user_id" gorm:"index"`

	Type    NotificationType `json:"type" gorm:"not null;index;default:GENERAL"`
	Title   string           `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Message string           `json:"message" gorm:"type:text;not null" validate:"required"`
	Payload datatypes.JSON   `json:"payload,omitempty" gorm:"type:jsonb"`

	IsRead bool `json:"is_read" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
