package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

type TestQuestionPostgreSQL struct {
	db *gorm.DB
}

func NewTestQuestionPostgreSQL(db *gorm.DB) repositories.TestQuestionRepository {
	return &TestQuestionPostgreSQL{db: db}
}

func (tq *TestQuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return tq.db
}

func (tq *TestQuestionPostgreSQL) Add(ctx context.Context, tx *gorm.DB, link *models.TestQuestion) error {
	db := tq.getDB(tx)
	return db.WithContext(ctx).Create(link).Error
}

func (tq *TestQuestionPostgreSQL) AddBatch(ctx context.Context, tx *gorm.DB, links []*models.TestQuestion) error {
	if len(links) == 0 {
		return nil
	}
	db := tq.getDB(tx)
	return db.WithContext(ctx).Create(links).Error
}

func (tq *TestQuestionPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, testID, questionID uint) error {
	db := tq.getDB(tx)
	result := db.WithContext(ctx).
		Where("test_id = ? AND question_id = ?", testID, questionID).
		Delete(&models.TestQuestion{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (tq *TestQuestionPostgreSQL) RemoveAll(ctx context.Context, tx *gorm.DB, testID uint) error {
	db := tq.getDB(tx)
	return db.WithContext(ctx).
		Where("test_id = ?", testID).
		Delete(&models.TestQuestion{}).Error
}

func (tq *TestQuestionPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestQuestion, error) {
	db := tq.getDB(tx)
	var links []*models.TestQuestion
	err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Preload("Question").
		Order("\"order\" ASC, id ASC").
		Find(&links).Error
	return links, err
}

func (tq *TestQuestionPostgreSQL) GetByTestAndQuestion(ctx context.Context, tx *gorm.DB, testID, questionID uint) (*models.TestQuestion, error) {
	db := tq.getDB(tx)
	var link models.TestQuestion
	err := db.WithContext(ctx).
		Where("test_id = ? AND question_id = ?", testID, questionID).
		Preload("Question").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (tq *TestQuestionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, testID, questionID uint) (bool, error) {
	db := tq.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("test_id = ? AND question_id = ?", testID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (tq *TestQuestionPostgreSQL) Count(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := tq.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	return count, err
}

func (tq *TestQuestionPostgreSQL) UpdateOrder(ctx context.Context, tx *gorm.DB, testID uint, orders []repositories.QuestionOrder) error {
	db := tq.getDB(tx)
	for _, o := range orders {
		err := db.WithContext(ctx).
			Model(&models.TestQuestion{}).
			Where("test_id = ? AND question_id = ?", testID, o.QuestionID).
			Update("order", o.Order).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (tq *TestQuestionPostgreSQL) UpdateMarksOverride(ctx context.Context, tx *gorm.DB, testID, questionID uint, marks *float64) error {
	db := tq.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("test_id = ? AND question_id = ?", testID, questionID).
		Update("marks_override", marks)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
