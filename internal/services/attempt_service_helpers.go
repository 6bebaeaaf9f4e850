package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

const (
	timeLevelNone     = "none"
	timeLevelNotice   = "notice"
	timeLevelWarning  = "warning"
	timeLevelCritical = "critical"
	timeLevelEnded    = "ended"
)

func (s *attemptService) getOwnAttempt(ctx context.Context, attemptID uint, studentID uint) (*models.TestAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, NewPermissionError(studentID, attemptID, "attempt", "access", "not the attempt owner")
	}
	return attempt, nil
}

// getLiveTest loads the attempt's test and verifies answers are still
// accepted: attempt open, test running, clock not past the grace window.
func (s *attemptService) getLiveTest(ctx context.Context, attemptID uint, studentID uint) (*models.Test, error) {
	attempt, err := s.getOwnAttempt(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted {
		return nil, ErrAttemptCompleted
	}

	test, err := s.repo.Test().GetByID(ctx, nil, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.Status != models.TestStatusInProgress {
		return nil, ErrTestNotActive
	}

	if status := ComputeTimeStatus(test, attempt, time.Now()); status.Level == timeLevelEnded {
		return nil, ErrAttemptExpired
	}
	return test, nil
}

func (s *attemptService) checkBatchAccess(ctx context.Context, test *models.Test, studentID uint) error {
	profile, err := s.repo.Student().GetByUserID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(studentID, test.ID, "test", "attempt", "no student profile")
		}
		return fmt.Errorf("failed to get student profile: %w", err)
	}

	batchIDs, err := s.repo.Test().GetBatchIDs(ctx, nil, test.ID)
	if err != nil {
		return fmt.Errorf("failed to get test batches: %w", err)
	}
	if len(batchIDs) == 0 {
		return nil
	}
	if profile.BatchID != nil {
		for _, id := range batchIDs {
			if id == *profile.BatchID {
				return nil
			}
		}
	}
	return NewPermissionError(studentID, test.ID, "test", "attempt", "test not assigned to student's batch")
}

// buildStartResponse assembles the student view: sanitized questions in the
// attempt's stable order plus any answers already saved.
func (s *attemptService) buildStartResponse(ctx context.Context, test *models.Test, attempt *models.TestAttempt, resumed bool) (*AttemptStartResponse, error) {
	links, err := s.repo.TestQuestion().GetByTest(ctx, nil, test.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test questions: %w", err)
	}

	questions := make([]*QuestionForAttempt, 0, len(links))
	for _, link := range links {
		questions = append(questions, &QuestionForAttempt{
			ID:      link.QuestionID,
			Type:    link.Question.Type,
			Text:    link.Question.Text,
			Options: link.Question.Options,
			Marks:   link.Marks(),
			Order:   link.Order,
		})
	}

	if test.ShuffleQuestions {
		// Seeding with the attempt ID keeps the order stable across resumes.
		rng := rand.New(rand.NewSource(int64(attempt.ID)))
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
		for i, q := range questions {
			q.Order = i + 1
		}
	}

	resp := &AttemptStartResponse{
		Attempt:   attempt,
		Test:      test,
		Questions: questions,
		Resumed:   resumed,
	}

	if resumed {
		answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load saved answers: %w", err)
		}
		saved := make(map[uint]string, len(answers))
		for _, ans := range answers {
			saved[ans.QuestionID] = ans.AnswerText
		}
		resp.SavedAnswers = saved
	}

	return resp, nil
}

// AttemptDeadline returns the hard stop for an attempt: the earlier of the
// test's scheduled end and the per-attempt time limit. The zero time means
// the attempt is unbounded.
func AttemptDeadline(test *models.Test, attempt *models.TestAttempt) time.Time {
	var deadline time.Time
	if test.TimeLimitMinutes > 0 {
		deadline = attempt.StartTime.Add(time.Duration(test.TimeLimitMinutes) * time.Minute)
	}
	if test.EndTimeScheduled != nil {
		if deadline.IsZero() || test.EndTimeScheduled.Before(deadline) {
			deadline = *test.EndTimeScheduled
		}
	}
	return deadline
}

// ComputeTimeStatus derives the remaining time and urgency level for a
// running attempt. Submissions stay accepted through the grace window after
// the deadline; after that the level is "ended".
func ComputeTimeStatus(test *models.Test, attempt *models.TestAttempt, now time.Time) *TimeStatus {
	grace := time.Duration(test.GracePeriodMinutes) * time.Minute

	deadline := AttemptDeadline(test, attempt)
	if deadline.IsZero() {
		return &TimeStatus{RemainingSeconds: -1, GraceSeconds: int(grace.Seconds()), Level: timeLevelNone}
	}

	status := &TimeStatus{
		Deadline:     deadline,
		GraceSeconds: int(grace.Seconds()),
	}

	if now.After(deadline.Add(grace)) {
		status.Level = timeLevelEnded
		return status
	}

	remaining := deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	status.RemainingSeconds = int(remaining.Seconds())

	switch {
	case remaining <= time.Minute:
		status.Level = timeLevelCritical
	case remaining <= 5*time.Minute:
		status.Level = timeLevelWarning
	case remaining <= 15*time.Minute:
		status.Level = timeLevelNotice
	default:
		status.Level = timeLevelNone
	}
	return status
}
