package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
	RoleAdmin   UserRole = "ADMIN"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	FullName     string   `json:"full_name" gorm:"not null;size:100" validate:"required,max=100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Phone        *string  `json:"phone" gorm:"size:20"`
	Role         UserRole `json:"role" gorm:"not null;index;default:STUDENT"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`

	// Disabled accounts are rejected at authentication time.
	IsDisabled bool `json:"is_disabled" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// StudentProfile carries the student-facing denormalized fields and the
// batch membership used to scope test visibility.
type StudentProfile struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	UserID  uint  `json:"user_id" gorm:"uniqueIndex;not null"`
	BatchID *uint `json:"batch_id" gorm:"index"`

	EnrollmentNo *string `json:"enrollment_no" gorm:"size:50"`
	GuardianName *string `json:"guardian_name" gorm:"size:100"`

	// Cumulative score across quiz submissions.
	TotalScore float64 `json:"total_score" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User   `json:"user" gorm:"foreignKey:UserID"`
	Batch *Batch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

type Staff struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	Designation *string `json:"designation" gorm:"size:100"`
	SubjectID   *uint   `json:"subject_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User     `json:"user" gorm:"foreignKey:UserID"`
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Staff) TableName() string {
	return "staff"
}
