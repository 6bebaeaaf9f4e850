package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
)

// TestRepository interface for test-specific operations
type TestRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) // Include batches, question count
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.Test, int64, error)
	GetByCreator(ctx context.Context, tx *gorm.DB, creatorID uint, filters TestFilters) ([]*models.Test, int64, error)
	GetVisibleToBatch(ctx context.Context, tx *gorm.DB, batchID uint, filters TestFilters) ([]*models.Test, int64, error)

	// Status management
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TestStatus) error
	GetDueForAutoStart(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Test, error)
	GetDueForAutoEnd(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Test, error)

	// Batch assignment
	ReplaceBatches(ctx context.Context, tx *gorm.DB, test *models.Test, batchIDs []uint) error
	GetBatchIDs(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error)

	// Statistics
	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*TestStats, error)
}

// TestQuestionRepository interface for the test-question link table
type TestQuestionRepository interface {
	Add(ctx context.Context, tx *gorm.DB, link *models.TestQuestion) error
	AddBatch(ctx context.Context, tx *gorm.DB, links []*models.TestQuestion) error
	Remove(ctx context.Context, tx *gorm.DB, testID, questionID uint) error
	RemoveAll(ctx context.Context, tx *gorm.DB, testID uint) error

	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestQuestion, error)
	GetByTestAndQuestion(ctx context.Context, tx *gorm.DB, testID, questionID uint) (*models.TestQuestion, error)
	Exists(ctx context.Context, tx *gorm.DB, testID, questionID uint) (bool, error)
	Count(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)

	UpdateOrder(ctx context.Context, tx *gorm.DB, testID uint, orders []QuestionOrder) error
	UpdateMarksOverride(ctx context.Context, tx *gorm.DB, testID, questionID uint, marks *float64) error
}
