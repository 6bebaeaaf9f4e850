package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "TRUE_FALSE"
	QuestionFillInBlank QuestionType = "FILL_IN_THE_BLANK"
	QuestionMatch       QuestionType = "MATCH"
	QuestionChoiceBased QuestionType = "CHOICE_BASED"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Type QuestionType `json:"type" gorm:"not null;index" validate:"required,oneof=MCQ TRUE_FALSE FILL_IN_THE_BLANK MATCH CHOICE_BASED"`
	Text string       `json:"text" gorm:"type:text;not null" validate:"required"`

	// Options stored as JSONB: a key->value map for MCQ/CHOICE_BASED, or
	// left/right sides for MATCH. Empty for TRUE_FALSE and fill-ins.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	CorrectAnswer string  `json:"correct_answer" gorm:"type:text;not null" validate:"required"`
	Explanation   *string `json:"explanation" gorm:"type:text"`

	Marks      float64         `json:"marks" gorm:"not null;default:1" validate:"min=0.5,max=100"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"default:MEDIUM;index" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Topic      *string         `json:"topic" gorm:"size:200;index"`
	QPCode     *string         `json:"qp_code" gorm:"size:50;index"`

	// Usage counter bumped each time the question is linked to a test.
	UsageCount int `json:"usage_count" gorm:"not null;default:0"`

	CreatedBy uint      `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// ===== OPTION CONTENT SCHEMAS =====

// MCQOptions is the JSONB shape for MCQ/CHOICE_BASED questions: option key
// (e.g. "A") to option text.
type MCQOptions map[string]string

// MatchOptions is the JSONB shape for MATCH questions.
type MatchOptions struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}
