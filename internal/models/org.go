package models

import (
	"time"

	"gorm.io/gorm"
)

// Batch is a cohort of students sharing scheduling/visibility scope for
// tests and notifications.
type Batch struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Name     string  `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	CourseID *uint   `json:"course_id" gorm:"index"`
	Timing   *string `json:"timing" gorm:"size:100"`

	// Denormalized display field, refreshed on student create/delete.
	StudentCount int `json:"student_count" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Batch) TableName() string {
	return "batches"
}

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:150" validate:"required,max=150"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}

type Subject struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:150" validate:"required,max=150"`
	CourseID *uint  `json:"course_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Subject) TableName() string {
	return "subjects"
}
