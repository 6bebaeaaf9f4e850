package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
)

// UserRepository interface for account records
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	SetDisabled(ctx context.Context, tx *gorm.DB, id uint, disabled bool) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, id uint, passwordHash string) error
}

// StudentRepository interface for student profile records
type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentProfile, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.StudentProfile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByBatch(ctx context.Context, tx *gorm.DB, batchID uint) ([]*models.StudentProfile, error)
	GetUserIDsByBatch(ctx context.Context, tx *gorm.DB, batchID uint) ([]uint, error)
	CountByBatch(ctx context.Context, tx *gorm.DB, batchID uint) (int64, error)

	IncrementTotalScore(ctx context.Context, tx *gorm.DB, userID uint, delta float64) error
}

// StaffRepository interface for staff profile records
type StaffRepository interface {
	Create(ctx context.Context, tx *gorm.DB, staff *models.Staff) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Staff, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Staff, error)
	Update(ctx context.Context, tx *gorm.DB, staff *models.Staff) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Staff, int64, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Staff, error)
}
