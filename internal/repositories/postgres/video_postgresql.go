package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

type VideoPostgreSQL struct {
	db *gorm.DB
}

func NewVideoPostgreSQL(db *gorm.DB) repositories.VideoRepository {
	return &VideoPostgreSQL{db: db}
}

func (v *VideoPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

func (v *VideoPostgreSQL) Create(ctx context.Context, tx *gorm.DB, video *models.Video) error {
	db := v.getDB(tx)
	return db.WithContext(ctx).Create(video).Error
}

func (v *VideoPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Video, error) {
	db := v.getDB(tx)
	var video models.Video
	if err := db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (v *VideoPostgreSQL) Update(ctx context.Context, tx *gorm.DB, video *models.Video) error {
	db := v.getDB(tx)
	return db.WithContext(ctx).Save(video).Error
}

func (v *VideoPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := v.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Video{}, id).Error
}

func (v *VideoPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.VideoFilters) ([]*models.Video, int64, error) {
	db := v.getDB(tx)
	var videos []*models.Video
	var total int64

	query := db.WithContext(ctx).Model(&models.Video{})
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query.Order("created_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

func (v *VideoPostgreSQL) SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	db := v.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ?", id).
		Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
