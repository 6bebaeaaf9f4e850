package repositories

import (
	"time"

	"github.com/edstack/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Status    *models.TestStatus `json:"status"`
	Type      *models.TestType   `json:"type"`
	CourseID  *uint              `json:"course_id"`
	SubjectID *uint              `json:"subject_id"`
	BatchID   *uint              `json:"batch_id"`
	CreatedBy *uint              `json:"created_by"`
	DateFrom  *time.Time         `json:"date_from"`
	DateTo    *time.Time         `json:"date_to"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title", "start_time"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Topic      *string                 `json:"topic"`
	QPCode     *string                 `json:"qp_code"`
	CreatedBy  *uint                   `json:"created_by"`
	Search     string                  `json:"search"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

type AttemptFilters struct {
	TestID      *uint      `json:"test_id"`
	StudentID   *uint      `json:"student_id"`
	IsCompleted *bool      `json:"is_completed"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortBy      string     `json:"sort_by"`
	SortOrder   string     `json:"sort_order"`
}

type NotificationFilters struct {
	Type       *models.NotificationType `json:"type"`
	UnreadOnly bool                     `json:"unread_only"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
}

type UserFilters struct {
	Role            *models.UserRole `json:"role"`
	BatchID         *uint            `json:"batch_id"`
	Query           string           `json:"query"` // matches name or email
	IncludeDisabled bool             `json:"include_disabled"`
	Limit           int              `json:"limit"`
	Offset          int              `json:"offset"`
	SortBy          string           `json:"sort_by"`
	SortOrder       string           `json:"sort_order"`
}

type VideoFilters struct {
	SubjectID     *uint `json:"subject_id"`
	CourseID      *uint `json:"course_id"`
	PublishedOnly bool  `json:"published_only"`
	Limit         int   `json:"limit"`
	Offset        int   `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"question_id"`
	Order      int  `json:"order"`
}

// LeaderboardEntry is one ranked row for a completed test.
type LeaderboardEntry struct {
	Rank             int     `json:"rank"`
	StudentID        uint    `json:"student_id"`
	StudentName      string  `json:"student_name"`
	AttemptID        uint    `json:"attempt_id"`
	Score            float64 `json:"score"`
	Accuracy         float64 `json:"accuracy"`
	TimeTakenSeconds int     `json:"time_taken_seconds"`
}

// ===== STATISTICS STRUCTS =====

type TestStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	CompletedAttempts int     `json:"completed_attempts"`
	AverageScore      float64 `json:"average_score"`
	HighestScore      float64 `json:"highest_score"`
	PassRate          float64 `json:"pass_rate"`
	AverageTimeSpent  int     `json:"average_time_spent"`
	QuestionCount     int     `json:"question_count"`
}

type StudentTestSummary struct {
	TotalAttempts   int     `json:"total_attempts"`
	CompletedTests  int     `json:"completed_tests"`
	AverageScore    float64 `json:"average_score"`
	AverageAccuracy float64 `json:"average_accuracy"`
	TotalScore      float64 `json:"total_score"`
}
