package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/cache"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	return db.WithContext(ctx).Create(test).Error
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	var test models.Test
	if err := db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	var test models.Test
	if err := db.WithContext(ctx).
		Preload("Batches").
		First(&test, id).Error; err != nil {
		return nil, err
	}

	var questionCount int64
	if err := db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("test_id = ?", id).
		Count(&questionCount).Error; err != nil {
		return nil, err
	}
	test.QuestionCount = int(questionCount)

	var attemptCount int64
	if err := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", id).
		Count(&attemptCount).Error; err != nil {
		return nil, err
	}
	test.AttemptCount = int(attemptCount)

	return &test, nil
}

func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(test).Error; err != nil {
		return err
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, test.ID)
	return nil
}

func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Test{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, id)
	return nil
}

func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	var total int64

	query := db.WithContext(ctx).Model(&models.Test{})
	if filters.BatchID != nil {
		query = query.
			Joins("JOIN test_batches ON test_batches.test_id = tests.id").
			Where("test_batches.batch_id = ?", *filters.BatchID)
	}
	query = applyTestFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Batches").Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID uint, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	filters.CreatedBy = &creatorID
	return t.List(ctx, tx, filters)
}

func (t *TestPostgreSQL) GetVisibleToBatch(ctx context.Context, tx *gorm.DB, batchID uint, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	filters.BatchID = &batchID
	return t.List(ctx, tx, filters)
}

func (t *TestPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TestStatus) error {
	db := t.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, id)
	return nil
}

func (t *TestPostgreSQL) GetDueForAutoStart(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Test, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	err := db.WithContext(ctx).
		Where("status = ? AND auto_start = ? AND start_time IS NOT NULL AND start_time <= ?",
			models.TestStatusNotStarted, true, now).
		Find(&tests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tests due for auto start: %w", err)
	}
	return tests, nil
}

func (t *TestPostgreSQL) GetDueForAutoEnd(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Test, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	err := db.WithContext(ctx).
		Where("status = ? AND auto_end = ? AND end_time_scheduled IS NOT NULL AND end_time_scheduled <= ?",
			models.TestStatusInProgress, true, now).
		Find(&tests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tests due for auto end: %w", err)
	}
	return tests, nil
}

func (t *TestPostgreSQL) ReplaceBatches(ctx context.Context, tx *gorm.DB, test *models.Test, batchIDs []uint) error {
	db := t.getDB(tx)

	batches := make([]models.Batch, 0, len(batchIDs))
	if len(batchIDs) > 0 {
		if err := db.WithContext(ctx).Find(&batches, batchIDs).Error; err != nil {
			return err
		}
		if len(batches) != len(batchIDs) {
			return fmt.Errorf("one or more batches not found")
		}
	}

	if err := db.WithContext(ctx).Model(test).Association("Batches").Replace(batches); err != nil {
		return err
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, test.ID)
	return nil
}

func (t *TestPostgreSQL) GetBatchIDs(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error) {
	db := t.getDB(tx)
	var ids []uint
	err := db.WithContext(ctx).
		Table("test_batches").
		Where("test_id = ?", testID).
		Pluck("batch_id", &ids).Error
	return ids, err
}

func (t *TestPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.TestStats, error) {
	db := t.getDB(tx)
	stats := &repositories.TestStats{}

	var totals struct {
		Total     int64
		Completed int64
	}
	err := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE is_completed) AS completed").
		Where("test_id = ?", id).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalAttempts = int(totals.Total)
	stats.CompletedAttempts = int(totals.Completed)

	var test models.Test
	if err := db.WithContext(ctx).Select("id, passing_marks").First(&test, id).Error; err != nil {
		return nil, err
	}

	if totals.Completed > 0 {
		var agg struct {
			AvgScore float64
			MaxScore float64
			AvgTime  float64
			Passed   int64
		}
		err = db.WithContext(ctx).
			Model(&models.TestAttempt{}).
			Select("AVG(score) AS avg_score, MAX(score) AS max_score, AVG(time_taken_seconds) AS avg_time, COUNT(*) FILTER (WHERE score >= ?) AS passed", test.PassingMarks).
			Where("test_id = ? AND is_completed = ?", id, true).
			Scan(&agg).Error
		if err != nil {
			return nil, err
		}
		stats.AverageScore = agg.AvgScore
		stats.HighestScore = agg.MaxScore
		stats.AverageTimeSpent = int(agg.AvgTime)
		stats.PassRate = float64(agg.Passed) / float64(totals.Completed) * 100
	}

	var questionCount int64
	if err := db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("test_id = ?", id).
		Count(&questionCount).Error; err != nil {
		return nil, err
	}
	stats.QuestionCount = int(questionCount)

	return stats, nil
}
