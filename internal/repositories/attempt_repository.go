package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
)

// AttemptRepository interface for test attempt operations
type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestAttempt, error)
	GetActiveAttempt(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestAttempt, error)

	// Completion sweeps
	GetIncompleteByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestAttempt, error)
	GetExpired(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.TestAttempt, error)
	GetDistinctStudentIDs(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error)

	// Ranking
	GetLeaderboard(ctx context.Context, tx *gorm.DB, testID uint, limit int) ([]*LeaderboardEntry, error)

	// Statistics
	GetStudentSummary(ctx context.Context, tx *gorm.DB, studentID uint) (*StudentTestSummary, error)
	CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
}

// AnswerRepository interface for per-question answer rows
type AnswerRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.UserAnswer) error
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.UserAnswer, error)
	GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID uint) (*models.UserAnswer, error)
	DeleteByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) error
	CountByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) (int64, error)
}
