package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type orgService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    utils.Logger
	validator *validator.Validator
}

func NewOrgService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator) OrgService {
	return &orgService{repo: repo, db: db, logger: logger, validator: v}
}

func normalizeListPage(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// Batches

func (s *orgService) CreateBatch(ctx context.Context, batch *models.Batch) (*models.Batch, error) {
	if batch.Name == "" {
		return nil, NewValidationError("batch name is required")
	}
	if err := s.repo.Batch().Create(ctx, nil, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	s.logger.Info("batch created", "batch_id", batch.ID, "name", batch.Name)
	return batch, nil
}

func (s *orgService) GetBatch(ctx context.Context, id uint) (*models.Batch, error) {
	batch, err := s.repo.Batch().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return batch, nil
}

func (s *orgService) UpdateBatch(ctx context.Context, id uint, update *models.Batch) (*models.Batch, error) {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != "" {
		batch.Name = update.Name
	}
	if update.Timing != nil {
		batch.Timing = update.Timing
	}
	if update.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, nil, *update.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		batch.CourseID = update.CourseID
	}
	if err := s.repo.Batch().Update(ctx, nil, batch); err != nil {
		return nil, fmt.Errorf("failed to update batch: %w", err)
	}
	return batch, nil
}

func (s *orgService) DeleteBatch(ctx context.Context, id uint) error {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.repo.Student().CountByBatch(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count batch students: %w", err)
	}
	if count > 0 {
		return NewValidationError("batch %d still has %d students assigned", id, count)
	}
	if err := s.repo.Batch().Delete(ctx, nil, batch.ID); err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	return nil
}

func (s *orgService) ListBatches(ctx context.Context, limit, offset int) ([]*models.Batch, int64, error) {
	return s.repo.Batch().List(ctx, nil, normalizeListPage(limit), offset)
}

// Courses

func (s *orgService) CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if course.Name == "" {
		return nil, NewValidationError("course name is required")
	}
	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

func (s *orgService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *orgService) UpdateCourse(ctx context.Context, id uint, update *models.Course) (*models.Course, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != "" {
		course.Name = update.Name
	}
	if update.Description != nil {
		course.Description = update.Description
	}
	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *orgService) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.GetCourse(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Course().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *orgService) ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, int64, error) {
	return s.repo.Course().List(ctx, nil, normalizeListPage(limit), offset)
}

// Subjects

func (s *orgService) CreateSubject(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	if subject.Name == "" {
		return nil, NewValidationError("subject name is required")
	}
	if err := s.repo.Subject().Create(ctx, nil, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}
	return subject, nil
}

func (s *orgService) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *orgService) UpdateSubject(ctx context.Context, id uint, update *models.Subject) (*models.Subject, error) {
	subject, err := s.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != "" {
		subject.Name = update.Name
	}
	if update.CourseID != nil {
		if _, err := s.GetCourse(ctx, *update.CourseID); err != nil {
			return nil, err
		}
		subject.CourseID = update.CourseID
	}
	if err := s.repo.Subject().Update(ctx, nil, subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}
	return subject, nil
}

func (s *orgService) DeleteSubject(ctx context.Context, id uint) error {
	if _, err := s.GetSubject(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Subject().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	return nil
}

func (s *orgService) ListSubjects(ctx context.Context, limit, offset int) ([]*models.Subject, int64, error) {
	return s.repo.Subject().List(ctx, nil, normalizeListPage(limit), offset)
}
