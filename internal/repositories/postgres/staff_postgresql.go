package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

type StaffPostgreSQL struct {
	db *gorm.DB
}

func NewStaffPostgreSQL(db *gorm.DB) repositories.StaffRepository {
	return &StaffPostgreSQL{db: db}
}

func (s *StaffPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StaffPostgreSQL) Create(ctx context.Context, tx *gorm.DB, staff *models.Staff) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(staff).Error
}

func (s *StaffPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Staff, error) {
	db := s.getDB(tx)
	var staff models.Staff
	if err := db.WithContext(ctx).Preload("User").First(&staff, id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *StaffPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Staff, error) {
	db := s.getDB(tx)
	var staff models.Staff
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("User").
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *StaffPostgreSQL) Update(ctx context.Context, tx *gorm.DB, staff *models.Staff) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Save(staff).Error
}

func (s *StaffPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Staff{}, id).Error
}

func (s *StaffPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Staff, int64, error) {
	db := s.getDB(tx)
	var staff []*models.Staff
	var total int64

	query := db.WithContext(ctx).Model(&models.Staff{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query.Order("created_at DESC"), limit, offset)
	if err := query.Preload("User").Find(&staff).Error; err != nil {
		return nil, 0, err
	}

	return staff, total, nil
}

func (s *StaffPostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Staff, error) {
	db := s.getDB(tx)
	var staff []*models.Staff
	err := db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Preload("User").
		Find(&staff).Error
	return staff, err
}
