package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edstack/exam-service/internal/events"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/validator"
)

// getOwnedTest loads a test and checks the caller may manage it. Admins may
// manage any test; teachers only their own.
func (s *testService) getOwnedTest(ctx context.Context, id uint, userID uint, action string) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if test.CreatedBy != userID {
		user, err := s.repo.User().GetByID(ctx, nil, userID)
		if err != nil {
			return nil, NewPermissionError(userID, id, "test", action, "not owner")
		}
		if user.Role != models.RoleAdmin {
			return nil, NewPermissionError(userID, id, "test", action, "not owner")
		}
	}

	return test, nil
}

// applyAction validates the transition and writes the new status.
func (s *testService) applyAction(ctx context.Context, id uint, userID uint, action validator.TestAction, next models.TestStatus) (*models.Test, error) {
	test, err := s.getOwnedTest(ctx, id, userID, string(action))
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateTestAction(test.Status, action); err != nil {
		return nil, err
	}

	if err := s.repo.Test().UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	test.Status = next

	s.logger.Info("test status changed", "test_id", id, "action", action, "status", next, "by", userID)
	return test, nil
}

// sweepIncompleteAttempts finalizes every in-flight attempt of a test.
func (s *testService) sweepIncompleteAttempts(ctx context.Context, test *models.Test) error {
	attempts, err := s.repo.Attempt().GetIncompleteByTest(ctx, nil, test.ID)
	if err != nil {
		return err
	}
	for _, attempt := range attempts {
		if err := s.scoring.FinalizeAttempt(ctx, attempt, test); err != nil {
			s.logger.Error("failed to finalize attempt during sweep",
				"attempt_id", attempt.ID, "test_id", test.ID, "error", err)
		}
	}
	return nil
}

func (s *testService) studentInTestBatches(ctx context.Context, test *models.Test, userID uint) (bool, error) {
	profile, err := s.repo.Student().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get student profile: %w", err)
	}
	if profile.BatchID == nil {
		return false, nil
	}

	batchIDs, err := s.repo.Test().GetBatchIDs(ctx, nil, test.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get test batches: %w", err)
	}
	// A test with no batch assignment is visible to every student.
	if len(batchIDs) == 0 {
		return true, nil
	}
	for _, id := range batchIDs {
		if id == *profile.BatchID {
			return true, nil
		}
	}
	return false, nil
}

// announcePublish fans out in-app notifications to assigned batches and
// emits the published event. Failures are logged, never surfaced.
func (s *testService) announcePublish(ctx context.Context, test *models.Test) {
	batchIDs, err := s.repo.Test().GetBatchIDs(ctx, nil, test.ID)
	if err != nil {
		s.logger.Error("failed to get batches for publish notification", "test_id", test.ID, "error", err)
		batchIDs = nil
	}

	title := "New test available"
	message := fmt.Sprintf("Test %q is now available.", test.Title)
	payload := map[string]interface{}{"test_id": test.ID, "title": test.Title}

	if len(batchIDs) > 0 {
		err = s.notification.NotifyBatches(ctx, batchIDs, models.NotificationTestPublished, title, message, payload)
	} else {
		err = s.notification.NotifyAll(ctx, models.NotificationTestPublished, title, message, payload)
	}
	if err != nil {
		s.logger.Error("failed to send publish notifications", "test_id", test.ID, "error", err)
	}

	s.publishEvent(ctx, events.EventTestPublished, map[string]interface{}{
		"test_id":   test.ID,
		"title":     test.Title,
		"status":    test.Status,
		"batch_ids": batchIDs,
	})
}

// announceResults notifies each student who attempted the test, once.
func (s *testService) announceResults(ctx context.Context, test *models.Test) {
	studentIDs, err := s.repo.Attempt().GetDistinctStudentIDs(ctx, nil, test.ID)
	if err != nil {
		s.logger.Error("failed to get attempt students for results notification", "test_id", test.ID, "error", err)
		studentIDs = nil
	}

	title := "Results published"
	message := fmt.Sprintf("Results for %q are out.", test.Title)
	payload := map[string]interface{}{"test_id": test.ID, "title": test.Title}

	for _, studentID := range studentIDs {
		if err := s.notification.NotifyUser(ctx, studentID, models.NotificationResultPublished, title, message, payload); err != nil {
			s.logger.Error("failed to send results notification", "test_id", test.ID, "student_id", studentID, "error", err)
		}
	}

	s.publishEvent(ctx, events.EventTestResultsPublished, map[string]interface{}{
		"test_id": test.ID,
		"title":   test.Title,
	})
}

func (s *testService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("failed to publish event", "event_type", eventType, "error", err)
	}
}

// ===== QUESTION MANAGEMENT =====

// questionSetLocked reports whether a test no longer accepts question
// changes. Scheduled and running tests stay editable, a test created with a
// past start time goes live immediately and still needs its questions.
func questionSetLocked(test *models.Test) bool {
	return test.Status == models.TestStatusCompleted || test.Status == models.TestStatusArchived
}

func (s *testService) AddQuestion(ctx context.Context, testID uint, req *AddQuestionRequest, userID uint) error {
	return s.AddQuestions(ctx, testID, []AddQuestionRequest{*req}, userID)
}

func (s *testService) AddQuestions(ctx context.Context, testID uint, reqs []AddQuestionRequest, userID uint) error {
	if len(reqs) == 0 {
		return NewValidationError("no questions given")
	}

	test, err := s.getOwnedTest(ctx, testID, userID, "add_questions")
	if err != nil {
		return err
	}
	if questionSetLocked(test) {
		return NewValidationError("questions cannot be changed after the test has ended")
	}

	seen := make(map[uint]bool, len(reqs))
	questionIDs := make([]uint, 0, len(reqs))
	for _, req := range reqs {
		if seen[req.QuestionID] {
			return ErrDuplicateQuestion
		}
		seen[req.QuestionID] = true
		questionIDs = append(questionIDs, req.QuestionID)
	}

	questions, err := s.repo.Question().GetByIDs(ctx, nil, questionIDs)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if len(questions) != len(questionIDs) {
		return ErrQuestionNotFound
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		existingCount, err := txRepo.TestQuestion().Count(ctx, nil, testID)
		if err != nil {
			return err
		}

		links := make([]*models.TestQuestion, 0, len(reqs))
		for i, req := range reqs {
			exists, err := txRepo.TestQuestion().Exists(ctx, nil, testID, req.QuestionID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateQuestion
			}

			order := req.Order
			if order == 0 {
				order = int(existingCount) + i + 1
			}
			links = append(links, &models.TestQuestion{
				TestID:        testID,
				QuestionID:    req.QuestionID,
				Order:         order,
				MarksOverride: req.MarksOverride,
			})
		}

		if err := txRepo.TestQuestion().AddBatch(ctx, nil, links); err != nil {
			return fmt.Errorf("failed to link questions: %w", err)
		}
		if err := txRepo.Question().IncrementUsage(ctx, nil, questionIDs); err != nil {
			return fmt.Errorf("failed to bump usage counters: %w", err)
		}
		return nil
	})
}

func (s *testService) RemoveQuestion(ctx context.Context, testID, questionID uint, userID uint) error {
	test, err := s.getOwnedTest(ctx, testID, userID, "remove_question")
	if err != nil {
		return err
	}
	if questionSetLocked(test) {
		return NewValidationError("questions cannot be changed after the test has ended")
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.TestQuestion().Remove(ctx, nil, testID, questionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotInTest
			}
			return err
		}
		return txRepo.Question().DecrementUsage(ctx, nil, []uint{questionID})
	})
}

func (s *testService) ReorderQuestions(ctx context.Context, testID uint, orders []repositories.QuestionOrder, userID uint) error {
	if len(orders) == 0 {
		return NewValidationError("no question orders given")
	}
	if _, err := s.getOwnedTest(ctx, testID, userID, "reorder_questions"); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.TestQuestion().UpdateOrder(ctx, nil, testID, orders)
	})
}

func (s *testService) UpdateQuestionMarks(ctx context.Context, testID, questionID uint, marks *float64, userID uint) error {
	if marks != nil && *marks < 0 {
		return NewValidationError("marks override cannot be negative")
	}
	if _, err := s.getOwnedTest(ctx, testID, userID, "update_question_marks"); err != nil {
		return err
	}

	if err := s.repo.TestQuestion().UpdateMarksOverride(ctx, nil, testID, questionID, marks); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotInTest
		}
		return err
	}
	return nil
}

func (s *testService) GetQuestions(ctx context.Context, testID uint, userID uint, role models.UserRole) ([]*models.TestQuestion, error) {
	if role == models.RoleStudent {
		return nil, NewPermissionError(userID, testID, "test", "view_questions", "students receive questions through attempts")
	}
	if _, err := s.getOwnedTest(ctx, testID, userID, "view_questions"); err != nil {
		return nil, err
	}
	return s.repo.TestQuestion().GetByTest(ctx, nil, testID)
}

func (s *testService) GetStats(ctx context.Context, testID uint, userID uint) (*repositories.TestStats, error) {
	if _, err := s.getOwnedTest(ctx, testID, userID, "view_stats"); err != nil {
		return nil, err
	}
	return s.repo.Test().GetStats(ctx, nil, testID)
}

// ===== SMALL HELPERS =====

func validateSchedule(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return NewValidationError("end_time_scheduled must be after start_time")
	}
	return nil
}

func studentVisibleStatus(status models.TestStatus) bool {
	switch status {
	case models.TestStatusNotStarted, models.TestStatusInProgress, models.TestStatusCompleted:
		return true
	}
	return false
}

func filterStudentVisible(tests []*models.Test) []*models.Test {
	out := tests[:0]
	for _, t := range tests {
		if studentVisibleStatus(t.Status) {
			out = append(out, t)
		}
	}
	return out
}

func applyTestUpdate(test *models.Test, req *UpdateTestRequest) {
	if req.Title != nil {
		test.Title = *req.Title
	}
	if req.CourseID != nil {
		test.CourseID = req.CourseID
	}
	if req.SubjectID != nil {
		test.SubjectID = req.SubjectID
	}
	if req.TimeLimitMinutes != nil {
		test.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.TotalMarks != nil {
		test.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		test.PassingMarks = *req.PassingMarks
	}
	if req.HasNegativeMarking != nil {
		test.HasNegativeMarking = *req.HasNegativeMarking
	}
	if req.NegativeMarks != nil {
		test.NegativeMarks = *req.NegativeMarks
	}
	if req.StartTime != nil {
		test.StartTime = req.StartTime
	}
	if req.EndTimeScheduled != nil {
		test.EndTimeScheduled = req.EndTimeScheduled
	}
	if req.AutoStart != nil {
		test.AutoStart = *req.AutoStart
	}
	if req.AutoEnd != nil {
		test.AutoEnd = *req.AutoEnd
	}
	if req.GracePeriodMinutes != nil {
		test.GracePeriodMinutes = *req.GracePeriodMinutes
	}
	if req.ShuffleQuestions != nil {
		test.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		test.ShuffleOptions = *req.ShuffleOptions
	}
	if req.AllowRevisit != nil {
		test.AllowRevisit = *req.AllowRevisit
	}
	if req.ResultReleaseTime != nil {
		test.ResultReleaseTime = req.ResultReleaseTime
	}
	if req.LeaderboardEnabled != nil {
		test.LeaderboardEnabled = *req.LeaderboardEnabled
	}
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
