package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

// ===== BATCH =====

type BatchPostgreSQL struct {
	db *gorm.DB
}

func NewBatchPostgreSQL(db *gorm.DB) repositories.BatchRepository {
	return &BatchPostgreSQL{db: db}
}

func (b *BatchPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return b.db
}

func (b *BatchPostgreSQL) Create(ctx context.Context, tx *gorm.DB, batch *models.Batch) error {
	db := b.getDB(tx)
	return db.WithContext(ctx).Create(batch).Error
}

func (b *BatchPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Batch, error) {
	db := b.getDB(tx)
	var batch models.Batch
	if err := db.WithContext(ctx).First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (b *BatchPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Batch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := b.getDB(tx)
	var batches []*models.Batch
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&batches).Error
	return batches, err
}

func (b *BatchPostgreSQL) Update(ctx context.Context, tx *gorm.DB, batch *models.Batch) error {
	db := b.getDB(tx)
	return db.WithContext(ctx).Save(batch).Error
}

func (b *BatchPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := b.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Batch{}, id).Error
}

func (b *BatchPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Batch, int64, error) {
	db := b.getDB(tx)
	var batches []*models.Batch
	var total int64

	query := db.WithContext(ctx).Model(&models.Batch{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query.Order("created_at DESC"), limit, offset)
	if err := query.Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (b *BatchPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Batch, error) {
	db := b.getDB(tx)
	var batches []*models.Batch
	err := db.WithContext(ctx).Where("course_id = ?", courseID).Find(&batches).Error
	return batches, err
}

func (b *BatchPostgreSQL) UpdateStudentCount(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	db := b.getDB(tx)
	return db.WithContext(ctx).
		Model(&models.Batch{}).
		Where("id = ?", id).
		Update("student_count", gorm.Expr("GREATEST(student_count + ?, 0)", delta)).Error
}

// ===== COURSE =====

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Create(course).Error
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Save(course).Error
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Course{}, id).Error
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	var courses []*models.Course
	var total int64

	query := db.WithContext(ctx).Model(&models.Course{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query.Order("name ASC"), limit, offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// ===== SUBJECT =====

type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(subject).Error
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	var subject models.Subject
	if err := db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Save(subject).Error
}

func (s *SubjectPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Subject{}, id).Error
}

func (s *SubjectPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Subject, int64, error) {
	db := s.getDB(tx)
	var subjects []*models.Subject
	var total int64

	query := db.WithContext(ctx).Model(&models.Subject{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyLimitOffset(query.Order("name ASC"), limit, offset)
	if err := query.Find(&subjects).Error; err != nil {
		return nil, 0, err
	}

	return subjects, total, nil
}

func (s *SubjectPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Subject, error) {
	db := s.getDB(tx)
	var subjects []*models.Subject
	err := db.WithContext(ctx).Where("course_id = ?", courseID).Find(&subjects).Error
	return subjects, err
}
