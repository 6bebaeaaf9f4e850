package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
)

// BatchRepository interface for batch records
type BatchRepository interface {
	Create(ctx context.Context, tx *gorm.DB, batch *models.Batch) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Batch, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Batch, error)
	Update(ctx context.Context, tx *gorm.DB, batch *models.Batch) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Batch, int64, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Batch, error)
	UpdateStudentCount(ctx context.Context, tx *gorm.DB, id uint, delta int) error
}

// CourseRepository interface for course records
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Course, int64, error)
}

// SubjectRepository interface for subject records
type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Subject, int64, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Subject, error)
}

// NotificationRepository interface for in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByUser(ctx context.Context, tx *gorm.DB, userID uint, filters NotificationFilters) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uint, userID uint) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) error
	CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

// VideoRepository interface for video asset records
type VideoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, video *models.Video) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Video, error)
	Update(ctx context.Context, tx *gorm.DB, video *models.Video) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters VideoFilters) ([]*models.Video, int64, error)
	SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error
}
