package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
)

// QuestionRepository interface for question bank operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error)

	// Validation and checks
	ExistsByContent(ctx context.Context, tx *gorm.DB, text string, questionType models.QuestionType, excludeID *uint) (bool, error)
	IsUsedInTests(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// Usage counters
	IncrementUsage(ctx context.Context, tx *gorm.DB, ids []uint) error
	DecrementUsage(ctx context.Context, tx *gorm.DB, ids []uint) error
}
