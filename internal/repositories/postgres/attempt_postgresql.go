package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	if err := db.WithContext(ctx).
		Preload("Answers").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Save(attempt).Error
}

func (a *AttemptPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Delete(&models.TestAttempt{}, id).Error
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.TestAttempt
	var total int64

	query := db.WithContext(ctx).Model(&models.TestAttempt{})
	query = applyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.StudentID = &studentID
	return a.List(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.TestID = &testID
	return a.List(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	err := db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	err := db.WithContext(ctx).
		Where("student_id = ? AND test_id = ? AND is_completed = ?", studentID, testID, false).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetIncompleteByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempts []*models.TestAttempt
	err := db.WithContext(ctx).
		Where("test_id = ? AND is_completed = ?", testID, false).
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get incomplete attempts: %w", err)
	}
	return attempts, nil
}

// GetExpired returns in-progress attempts whose test deadline has already passed.
func (a *AttemptPostgreSQL) GetExpired(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempts []*models.TestAttempt
	err := db.WithContext(ctx).
		Joins("JOIN tests ON tests.id = test_attempts.test_id").
		Where("test_attempts.is_completed = ?", false).
		Where(
			db.Where("tests.end_time_scheduled IS NOT NULL AND tests.end_time_scheduled + (tests.grace_period_minutes * INTERVAL '1 minute') <= ?", now).
				Or("tests.time_limit_minutes > 0 AND test_attempts.start_time + (tests.time_limit_minutes * INTERVAL '1 minute') + (tests.grace_period_minutes * INTERVAL '1 minute') <= ?", now),
		).
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get expired attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetDistinctStudentIDs(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error) {
	db := a.getDB(tx)
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", testID).
		Distinct().
		Pluck("student_id", &ids).Error
	return ids, err
}

// GetLeaderboard returns completed attempts ordered by score desc, then time
// taken asc, then earliest submission. Ranks are dense over score alone, so
// equal scores share a rank no matter how fast they finished.
func (a *AttemptPostgreSQL) GetLeaderboard(ctx context.Context, tx *gorm.DB, testID uint, limit int) ([]*repositories.LeaderboardEntry, error) {
	db := a.getDB(tx)
	var entries []*repositories.LeaderboardEntry

	query := db.WithContext(ctx).
		Table("test_attempts").
		Select(`test_attempts.student_id,
			users.full_name AS student_name,
			test_attempts.id AS attempt_id,
			test_attempts.score,
			test_attempts.accuracy,
			test_attempts.time_taken_seconds`).
		Joins("JOIN users ON users.id = test_attempts.student_id").
		Where("test_attempts.test_id = ? AND test_attempts.is_completed = ?", testID, true).
		Order("test_attempts.score DESC, test_attempts.time_taken_seconds ASC, test_attempts.created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	repositories.ApplyLeaderboardRanks(entries)
	return entries, nil
}

func (a *AttemptPostgreSQL) GetStudentSummary(ctx context.Context, tx *gorm.DB, studentID uint) (*repositories.StudentTestSummary, error) {
	db := a.getDB(tx)
	summary := &repositories.StudentTestSummary{}

	var agg struct {
		Total       int64
		Completed   int64
		AvgScore    float64
		AvgAccuracy float64
		TotalScore  float64
	}
	err := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_completed) AS completed,
			COALESCE(AVG(score) FILTER (WHERE is_completed), 0) AS avg_score,
			COALESCE(AVG(accuracy) FILTER (WHERE is_completed), 0) AS avg_accuracy,
			COALESCE(SUM(score) FILTER (WHERE is_completed), 0) AS total_score`).
		Where("student_id = ?", studentID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	summary.TotalAttempts = int(agg.Total)
	summary.CompletedTests = int(agg.Completed)
	summary.AverageScore = agg.AvgScore
	summary.AverageAccuracy = agg.AvgAccuracy
	summary.TotalScore = agg.TotalScore

	return summary, nil
}

func (a *AttemptPostgreSQL) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	return count, err
}
