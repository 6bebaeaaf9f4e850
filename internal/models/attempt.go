package models

import (
	"time"
)

// TestAttempt is one student's pass at a Test. At most one completed attempt
// may exist per (student, test); an incomplete attempt may be resumed. The
// invariant is backed by a partial unique index created at migration time in
// addition to the application-level check.
type TestAttempt struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	TestID    uint `json:"test_id" gorm:"not null;index"`
	StudentID uint `json:"student_id" gorm:"not null;index"`

	StartTime   time.Time  `json:"start_time" gorm:"not null"`
	SubmitTime  *time.Time `json:"submit_time"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false;index"`

	// Scoring, recomputed from UserAnswer rows at completion.
	Score            float64 `json:"score" gorm:"not null;default:0"`
	CorrectCount     int     `json:"correct_count" gorm:"not null;default:0"`
	WrongCount       int     `json:"wrong_count" gorm:"not null;default:0"`
	UnattemptedCount int     `json:"unattempted_count" gorm:"not null;default:0"`
	Accuracy         float64 `json:"accuracy" gorm:"not null;default:0"`
	TimeTakenSeconds int     `json:"time_taken_seconds" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Test    Test         `json:"-" gorm:"foreignKey:TestID"`
	Student User         `json:"-" gorm:"foreignKey:StudentID"`
	Answers []UserAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// UserAnswer is one student's answer to one question within one attempt.
// Upserted per (attempt, question): resubmission overwrites.
type UserAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`

	AnswerText    string  `json:"answer_text" gorm:"type:text"`
	IsCorrect     bool    `json:"is_correct" gorm:"not null;default:false"`
	MarksObtained float64 `json:"marks_obtained" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attempt  TestAttempt `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question    `json:"-" gorm:"foreignKey:QuestionID"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
