package models

import (
	"time"

	"gorm.io/gorm"
)

// Video is a pre-recorded lecture asset. Download access is authorized via a
// short-lived token held in redis, not persisted here.
type Video struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Title     string  `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	SubjectID *uint   `json:"subject_id" gorm:"index"`
	CourseID  *uint   `json:"course_id" gorm:"index"`
	URL       string  `json:"url" gorm:"not null;size:500" validate:"required,max=500"`
	Duration  int     `json:"duration_seconds" gorm:"not null;default:0"`
	Thumbnail *string `json:"thumbnail" gorm:"size:500"`

	IsPublished bool `json:"is_published" gorm:"not null;default:false;index"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Video) TableName() string {
	return "videos"
}
