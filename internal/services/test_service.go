package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/events"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type testService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       utils.Logger
	validator    *validator.Validator
	publisher    events.EventPublisher
	notification NotificationService
	scoring      ScoringService
}

func NewTestService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator, publisher events.EventPublisher, notification NotificationService, scoring ScoringService) TestService {
	return &testService{
		repo:         repo,
		db:           db,
		logger:       logger,
		validator:    v,
		publisher:    publisher,
		notification: notification,
		scoring:      scoring,
	}
}

// ===== CRUD =====

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID uint) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateSchedule(req.StartTime, req.EndTimeScheduled); err != nil {
		return nil, err
	}

	test := &models.Test{
		Title:              req.Title,
		Type:               req.Type,
		CourseID:           req.CourseID,
		SubjectID:          req.SubjectID,
		TimeLimitMinutes:   req.TimeLimitMinutes,
		TotalMarks:         req.TotalMarks,
		PassingMarks:       req.PassingMarks,
		HasNegativeMarking: req.HasNegativeMarking,
		NegativeMarks:      req.NegativeMarks,
		StartTime:          req.StartTime,
		EndTimeScheduled:   req.EndTimeScheduled,
		GracePeriodMinutes: req.GracePeriodMinutes,
		ShuffleQuestions:   req.ShuffleQuestions,
		ShuffleOptions:     req.ShuffleOptions,
		AllowRevisit:       true,
		ResultReleaseTime:  req.ResultReleaseTime,
		CreatedBy:          creatorID,
	}
	if test.Type == "" {
		test.Type = models.TestTypeCustom
	}
	test.AutoStart = true
	if req.AutoStart != nil {
		test.AutoStart = *req.AutoStart
	}
	// A scheduled auto-start test skips DRAFT entirely.
	test.Status = validator.ComputeScheduledStatus(test.StartTime, test.AutoStart, models.TestStatusDraft, time.Now())
	if req.AutoEnd != nil {
		test.AutoEnd = *req.AutoEnd
	}
	if req.AllowRevisit != nil {
		test.AllowRevisit = *req.AllowRevisit
	}
	if req.LeaderboardEnabled != nil {
		test.LeaderboardEnabled = *req.LeaderboardEnabled
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Test().Create(ctx, nil, test); err != nil {
			return fmt.Errorf("failed to create test: %w", err)
		}
		if len(req.BatchIDs) > 0 {
			if err := txRepo.Test().ReplaceBatches(ctx, nil, test, dedupeIDs(req.BatchIDs)); err != nil {
				return fmt.Errorf("failed to assign batches: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("test created", "test_id", test.ID, "title", test.Title, "created_by", creatorID)
	return s.repo.Test().GetByIDWithDetails(ctx, nil, test.ID)
}

func (s *testService) GetByID(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if role == models.RoleStudent {
		if !studentVisibleStatus(test.Status) {
			return nil, ErrTestNotFound
		}
		ok, err := s.studentInTestBatches(ctx, test, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrTestNotFound
		}
	}

	return test, nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters, userID uint, role models.UserRole) (*TestListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	var tests []*models.Test
	var total int64
	var err error

	if role == models.RoleStudent {
		// Students only see published tests assigned to their batch.
		profile, perr := s.repo.Student().GetByUserID(ctx, nil, userID)
		if perr != nil {
			if repositories.IsNotFoundError(perr) {
				return &TestListResponse{Tests: []*models.Test{}, Limit: filters.Limit, Offset: filters.Offset}, nil
			}
			return nil, fmt.Errorf("failed to get student profile: %w", perr)
		}
		if profile.BatchID == nil {
			return &TestListResponse{Tests: []*models.Test{}, Limit: filters.Limit, Offset: filters.Offset}, nil
		}
		tests, total, err = s.repo.Test().GetVisibleToBatch(ctx, nil, *profile.BatchID, filters)
		if err == nil {
			tests = filterStudentVisible(tests)
		}
	} else {
		tests, total, err = s.repo.Test().List(ctx, nil, filters)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	return &TestListResponse{
		Tests:  tests,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *testService) Update(ctx context.Context, id uint, req *UpdateTestRequest, userID uint) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err := s.getOwnedTest(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	applyTestUpdate(test, req)
	if err := validateSchedule(test.StartTime, test.EndTimeScheduled); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Test().Update(ctx, nil, test); err != nil {
			return fmt.Errorf("failed to update test: %w", err)
		}
		if req.BatchIDs != nil {
			if err := txRepo.Test().ReplaceBatches(ctx, nil, test, dedupeIDs(req.BatchIDs)); err != nil {
				return fmt.Errorf("failed to update batches: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Test().GetByIDWithDetails(ctx, nil, id)
}

func (s *testService) Delete(ctx context.Context, id uint, userID uint) error {
	test, err := s.getOwnedTest(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	attempts, err := s.repo.Attempt().CountByTest(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	if attempts > 0 {
		return ErrTestHasAttempts
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.TestQuestion().RemoveAll(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to unlink questions: %w", err)
		}
		if err := txRepo.Test().Delete(ctx, nil, test.ID); err != nil {
			return fmt.Errorf("failed to delete test: %w", err)
		}
		return nil
	})
}

// ===== LIFECYCLE ACTIONS =====

// Publish moves a draft to its scheduled state and notifies assigned batches.
func (s *testService) Publish(ctx context.Context, id uint, userID uint) (*models.Test, error) {
	test, err := s.getOwnedTest(ctx, id, userID, "publish")
	if err != nil {
		return nil, err
	}

	questionCount, err := s.repo.TestQuestion().Count(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if err := s.validator.ValidatePublish(test.Status, int(questionCount)); err != nil {
		return nil, err
	}

	// Without a schedule the test goes live the moment it is published.
	next := validator.ComputeScheduledStatus(test.StartTime, test.AutoStart, models.TestStatusInProgress, time.Now())
	if err := s.repo.Test().UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	test.Status = next

	s.logger.Info("test published", "test_id", id, "status", next, "by", userID)
	s.announcePublish(ctx, test)

	return test, nil
}

func (s *testService) Start(ctx context.Context, id uint, userID uint) (*models.Test, error) {
	return s.applyAction(ctx, id, userID, validator.ActionStart, models.TestStatusInProgress)
}

// Complete ends the test and force-completes every in-flight attempt.
func (s *testService) Complete(ctx context.Context, id uint, userID uint) (*models.Test, error) {
	test, err := s.getOwnedTest(ctx, id, userID, "complete")
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateTestAction(test.Status, validator.ActionComplete); err != nil {
		return nil, err
	}

	if err := s.repo.Test().UpdateStatus(ctx, nil, id, models.TestStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	test.Status = models.TestStatusCompleted

	if err := s.sweepIncompleteAttempts(ctx, test); err != nil {
		s.logger.Error("failed to sweep incomplete attempts", "test_id", id, "error", err)
	}

	s.publishEvent(ctx, events.EventTestCompleted, map[string]interface{}{
		"test_id": id,
		"title":   test.Title,
	})

	return test, nil
}

func (s *testService) Archive(ctx context.Context, id uint, userID uint) (*models.Test, error) {
	return s.applyAction(ctx, id, userID, validator.ActionArchive, models.TestStatusArchived)
}

func (s *testService) MoveToDraft(ctx context.Context, id uint, userID uint) (*models.Test, error) {
	return s.applyAction(ctx, id, userID, validator.ActionMoveToDraft, models.TestStatusDraft)
}

// PublishResults releases results for a completed test immediately.
func (s *testService) PublishResults(ctx context.Context, id uint, userID uint) (*models.Test, error) {
	test, err := s.getOwnedTest(ctx, id, userID, "publish_results")
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateTestAction(test.Status, validator.ActionPublishResults); err != nil {
		return nil, err
	}
	if test.ShowCorrectAnswers {
		return nil, NewValidationError("results are already published")
	}

	now := time.Now()
	test.ShowCorrectAnswers = true
	test.ResultReleaseTime = &now
	if err := s.repo.Test().Update(ctx, nil, test); err != nil {
		return nil, fmt.Errorf("failed to release results: %w", err)
	}

	s.announceResults(ctx, test)
	return test, nil
}
