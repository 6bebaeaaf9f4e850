package validator

import (
	"time"

	"gorm.io/datatypes"

	"github.com/edstack/exam-service/internal/models"
)

// Request DTOs shared by the validator and the service layer.

type TestCreateRequest struct {
	Title              string          `json:"title" validate:"required,min=1,max=200"`
	Type               models.TestType `json:"type" validate:"omitempty,oneof=MOCK DAILY CUSTOM"`
	CourseID           *uint           `json:"course_id"`
	SubjectID          *uint           `json:"subject_id"`
	TimeLimitMinutes   int             `json:"time_limit_minutes" validate:"required,min=1,max=600"`
	TotalMarks         float64         `json:"total_marks" validate:"min=0"`
	PassingMarks       float64         `json:"passing_marks" validate:"min=0"`
	HasNegativeMarking bool            `json:"has_negative_marking"`
	NegativeMarks      float64         `json:"negative_marks" validate:"min=0"`
	StartTime          *time.Time      `json:"start_time"`
	EndTimeScheduled   *time.Time      `json:"end_time_scheduled"`
	AutoStart          *bool           `json:"auto_start"`
	AutoEnd            *bool           `json:"auto_end"`
	GracePeriodMinutes int             `json:"grace_period_minutes" validate:"min=0,max=60"`
	ShuffleQuestions   bool            `json:"shuffle_questions"`
	ShuffleOptions     bool            `json:"shuffle_options"`
	AllowRevisit       *bool           `json:"allow_revisit"`
	ResultReleaseTime  *time.Time      `json:"result_release_time"`
	LeaderboardEnabled *bool           `json:"leaderboard_enabled"`
	BatchIDs           []uint          `json:"batch_ids"`
}

type TestUpdateRequest struct {
	Title              *string    `json:"title" validate:"omitempty,min=1,max=200"`
	CourseID           *uint      `json:"course_id"`
	SubjectID          *uint      `json:"subject_id"`
	TimeLimitMinutes   *int       `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	TotalMarks         *float64   `json:"total_marks" validate:"omitempty,min=0"`
	PassingMarks       *float64   `json:"passing_marks" validate:"omitempty,min=0"`
	HasNegativeMarking *bool      `json:"has_negative_marking"`
	NegativeMarks      *float64   `json:"negative_marks" validate:"omitempty,min=0"`
	StartTime          *time.Time `json:"start_time"`
	EndTimeScheduled   *time.Time `json:"end_time_scheduled"`
	AutoStart          *bool      `json:"auto_start"`
	AutoEnd            *bool      `json:"auto_end"`
	GracePeriodMinutes *int       `json:"grace_period_minutes" validate:"omitempty,min=0,max=60"`
	ShuffleQuestions   *bool      `json:"shuffle_questions"`
	ShuffleOptions     *bool      `json:"shuffle_options"`
	AllowRevisit       *bool      `json:"allow_revisit"`
	ResultReleaseTime  *time.Time `json:"result_release_time"`
	LeaderboardEnabled *bool      `json:"leaderboard_enabled"`
	BatchIDs           []uint     `json:"batch_ids"`
}

type QuestionCreateRequest struct {
	Type          models.QuestionType    `json:"type" validate:"required,oneof=MCQ TRUE_FALSE FILL_IN_THE_BLANK MATCH CHOICE_BASED"`
	Text          string                 `json:"text" validate:"required"`
	Options       datatypes.JSON         `json:"options"`
	CorrectAnswer string                 `json:"correct_answer" validate:"required"`
	Explanation   *string                `json:"explanation"`
	Marks         float64                `json:"marks" validate:"min=0.5,max=100"`
	Difficulty    models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Topic         *string                `json:"topic" validate:"omitempty,max=200"`
	QPCode        *string                `json:"qp_code" validate:"omitempty,max=50"`
}

type QuestionUpdateRequest struct {
	Text          *string                 `json:"text"`
	Options       datatypes.JSON          `json:"options"`
	CorrectAnswer *string                 `json:"correct_answer"`
	Explanation   *string                 `json:"explanation"`
	Marks         *float64                `json:"marks" validate:"omitempty,min=0.5,max=100"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Topic         *string                 `json:"topic" validate:"omitempty,max=200"`
	QPCode        *string                 `json:"qp_code" validate:"omitempty,max=50"`
}

type StudentCreateRequest struct {
	FullName     string  `json:"full_name" validate:"required,max=100"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	Password     string  `json:"password" validate:"required,min=8"`
	BatchID      *uint   `json:"batch_id"`
	EnrollmentNo *string `json:"enrollment_no" validate:"omitempty,max=50"`
	GuardianName *string `json:"guardian_name" validate:"omitempty,max=100"`
}

type StudentUpdateRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	BatchID      *uint   `json:"batch_id"`
	EnrollmentNo *string `json:"enrollment_no" validate:"omitempty,max=50"`
	GuardianName *string `json:"guardian_name" validate:"omitempty,max=100"`
	IsDisabled   *bool   `json:"is_disabled"`
}

type StaffCreateRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Password    string  `json:"password" validate:"required,min=8"`
	Role        string  `json:"role" validate:"omitempty,oneof=TEACHER ADMIN"`
	Designation *string `json:"designation" validate:"omitempty,max=100"`
	SubjectID   *uint   `json:"subject_id"`
}

type StaffUpdateRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Designation *string `json:"designation" validate:"omitempty,max=100"`
	SubjectID   *uint   `json:"subject_id"`
	IsDisabled  *bool   `json:"is_disabled"`
}

type VideoCreateRequest struct {
	Title     string  `json:"title" validate:"required,max=200"`
	SubjectID *uint   `json:"subject_id"`
	CourseID  *uint   `json:"course_id"`
	URL       string  `json:"url" validate:"required,max=500"`
	Duration  int     `json:"duration_seconds" validate:"min=0"`
	Thumbnail *string `json:"thumbnail" validate:"omitempty,max=500"`
}

type VideoUpdateRequest struct {
	Title     *string `json:"title" validate:"omitempty,max=200"`
	SubjectID *uint   `json:"subject_id"`
	CourseID  *uint   `json:"course_id"`
	URL       *string `json:"url" validate:"omitempty,max=500"`
	Duration  *int    `json:"duration_seconds" validate:"omitempty,min=0"`
	Thumbnail *string `json:"thumbnail" validate:"omitempty,max=500"`
}
