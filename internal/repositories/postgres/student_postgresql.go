package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(profile).Error
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentProfile, error) {
	db := s.getDB(tx)
	var profile models.StudentProfile
	if err := db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *StudentPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.StudentProfile, error) {
	db := s.getDB(tx)
	var profile models.StudentProfile
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("User").
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Save(profile).Error
}

func (s *StudentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Delete(&models.StudentProfile{}, id).Error
}

func (s *StudentPostgreSQL) GetByBatch(ctx context.Context, tx *gorm.DB, batchID uint) ([]*models.StudentProfile, error) {
	db := s.getDB(tx)
	var profiles []*models.StudentProfile
	err := db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Preload("User").
		Find(&profiles).Error
	return profiles, err
}

func (s *StudentPostgreSQL) GetUserIDsByBatch(ctx context.Context, tx *gorm.DB, batchID uint) ([]uint, error) {
	db := s.getDB(tx)
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("batch_id = ?", batchID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (s *StudentPostgreSQL) CountByBatch(ctx context.Context, tx *gorm.DB, batchID uint) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("batch_id = ?", batchID).
		Count(&count).Error
	return count, err
}

func (s *StudentPostgreSQL) IncrementTotalScore(ctx context.Context, tx *gorm.DB, userID uint, delta float64) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("user_id = ?", userID).
		Update("total_score", gorm.Expr("total_score + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
