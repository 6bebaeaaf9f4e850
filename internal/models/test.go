package models

import (
	"time"

	"gorm.io/gorm"
)

type TestStatus string

const (
	TestStatusDraft      TestStatus = "DRAFT"
	TestStatusNotStarted TestStatus = "NOT_STARTED"
	TestStatusInProgress TestStatus = "IN_PROGRESS"
	TestStatusCompleted  TestStatus = "COMPLETED"
	TestStatusArchived   TestStatus = "ARCHIVED"
)

type TestType string

const (
	TestTypeMock   TestType = "MOCK"
	TestTypeDaily  TestType = "DAILY"
	TestTypeCustom TestType = "CUSTOM"
)

type Test struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Title string   `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Type  TestType `json:"type" gorm:"not null;default:CUSTOM;index" validate:"omitempty,oneof=MOCK DAILY CUSTOM"`

	// Nullable when the test is "common" across courses.
	CourseID  *uint `json:"course_id" gorm:"index"`
	SubjectID *uint `json:"subject_id" gorm:"index"`

	// Marks and timing
	TimeLimitMinutes   int     `json:"time_limit_minutes" gorm:"not null;default:60" validate:"min=1,max=600"`
	TotalMarks         float64 `json:"total_marks" gorm:"not null;default:0"`
	PassingMarks       float64 `json:"passing_marks" gorm:"not null;default:0"`
	HasNegativeMarking bool    `json:"has_negative_marking" gorm:"not null;default:false"`
	NegativeMarks      float64 `json:"negative_marks" gorm:"not null;default:0" validate:"min=0"`

	// Scheduling
	StartTime          *time.Time `json:"start_time"`
	EndTimeScheduled   *time.Time `json:"end_time_scheduled"`
	AutoStart          bool       `json:"auto_start" gorm:"not null;default:true"`
	AutoEnd            bool       `json:"auto_end" gorm:"not null;default:true"`
	GracePeriodMinutes int        `json:"grace_period_minutes" gorm:"not null;default:0" validate:"min=0,max=60"`

	Status TestStatus `json:"status" gorm:"not null;default:DRAFT;index"`

	// Display / behavior settings
	ShuffleQuestions   bool       `json:"shuffle_questions" gorm:"not null;default:false"`
	ShuffleOptions     bool       `json:"shuffle_options" gorm:"not null;default:false"`
	AllowRevisit       bool       `json:"allow_revisit" gorm:"not null;default:true"`
	ShowCorrectAnswers bool       `json:"show_correct_answers" gorm:"not null;default:false"`
	ResultReleaseTime  *time.Time `json:"result_release_time"`
	LeaderboardEnabled bool       `json:"leaderboard_enabled" gorm:"not null;default:true"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course    *Course        `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Subject   *Subject       `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Questions []TestQuestion `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	Batches   []Batch        `json:"batches,omitempty" gorm:"many2many:test_batches"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
	AttemptCount  int `json:"attempt_count" gorm:"-"`
}

func (Test) TableName() string {
	return "tests"
}

// TestQuestion links a Test to a reusable Question with a display order and
// an optional per-link marks override. Unique per (test, question).
type TestQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	TestID     uint `json:"test_id" gorm:"not null;index;uniqueIndex:idx_test_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_test_question"`

	Order         int      `json:"order" gorm:"not null;default:0"`
	MarksOverride *float64 `json:"marks_override"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Test     Test     `json:"-" gorm:"foreignKey:TestID"`
	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// Marks resolves the effective marks for this link.
func (tq *TestQuestion) Marks() float64 {
	if tq.MarksOverride != nil {
		return *tq.MarksOverride
	}
	return tq.Question.Marks
}
