package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    utils.Logger
	validator *validator.Validator
	scoring   ScoringService
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator, scoring ScoringService) AttemptService {
	return &attemptService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		scoring:   scoring,
	}
}

// Start begins a new attempt or resumes the student's in-flight one.
// A student gets exactly one completed attempt per test.
func (s *attemptService) Start(ctx context.Context, testID uint, studentID uint) (*AttemptStartResponse, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if test.Status != models.TestStatusInProgress {
		return nil, ErrTestNotActive
	}
	if err := s.checkBatchAccess(ctx, test, studentID); err != nil {
		return nil, err
	}

	// Resume before anything else. An active attempt survives reconnects.
	if active, err := s.repo.Attempt().GetActiveAttempt(ctx, nil, studentID, testID); err == nil {
		return s.buildStartResponse(ctx, test, active, true)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}

	if prior, err := s.repo.Attempt().GetByStudentAndTest(ctx, nil, studentID, testID); err == nil && prior.IsCompleted {
		return nil, ErrAttemptCompleted
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check prior attempts: %w", err)
	}

	attempt := &models.TestAttempt{
		TestID:    testID,
		StudentID: studentID,
		StartTime: time.Now(),
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("attempt started", "attempt_id", attempt.ID, "test_id", testID, "student_id", studentID)
	return s.buildStartResponse(ctx, test, attempt, false)
}

// SubmitAnswer evaluates and stores one answer. Correctness is never
// revealed while the attempt is live.
func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, studentID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	test, err := s.getLiveTest(ctx, attemptID, studentID)
	if err != nil {
		return err
	}

	link, err := s.repo.TestQuestion().GetByTestAndQuestion(ctx, nil, test.ID, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotInTest
		}
		return fmt.Errorf("failed to get test question: %w", err)
	}

	if !test.AllowRevisit {
		existing, err := s.repo.Answer().GetByAttemptAndQuestion(ctx, nil, attemptID, req.QuestionID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check existing answer: %w", err)
		}
		if existing != nil && strings.TrimSpace(existing.AnswerText) != "" {
			return NewValidationError("this test does not allow changing submitted answers")
		}
	}

	isCorrect, marks := ScoreAnswer(test, &link.Question, link.Marks(), req.AnswerText)
	answer := &models.UserAnswer{
		AttemptID:     attemptID,
		QuestionID:    req.QuestionID,
		AnswerText:    req.AnswerText,
		IsCorrect:     isCorrect,
		MarksObtained: marks,
	}
	if err := s.repo.Answer().Upsert(ctx, nil, answer); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}

// AutoSave stores a batch of answers from the client's periodic sync.
// A sync arriving past the deadline submits the attempt instead of saving.
func (s *attemptService) AutoSave(ctx context.Context, attemptID uint, req *AutoSaveRequest, studentID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	test, err := s.getLiveTest(ctx, attemptID, studentID)
	if err != nil {
		if errors.Is(err, ErrAttemptExpired) {
			s.forceComplete(ctx, attemptID, studentID)
		}
		return err
	}

	links, err := s.repo.TestQuestion().GetByTest(ctx, nil, test.ID)
	if err != nil {
		return fmt.Errorf("failed to load test questions: %w", err)
	}
	linkByQuestion := make(map[uint]*models.TestQuestion, len(links))
	for _, link := range links {
		linkByQuestion[link.QuestionID] = link
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, item := range req.Answers {
			link, ok := linkByQuestion[item.QuestionID]
			if !ok {
				return ErrQuestionNotInTest
			}
			isCorrect, marks := ScoreAnswer(test, &link.Question, link.Marks(), item.AnswerText)
			answer := &models.UserAnswer{
				AttemptID:     attemptID,
				QuestionID:    item.QuestionID,
				AnswerText:    item.AnswerText,
				IsCorrect:     isCorrect,
				MarksObtained: marks,
			}
			if err := txRepo.Answer().Upsert(ctx, nil, answer); err != nil {
				return fmt.Errorf("failed to save answer: %w", err)
			}
		}
		return nil
	})
}

// forceComplete finalizes an expired attempt from whatever answers were
// already saved. Failures are logged; the scheduler sweep retries later.
func (s *attemptService) forceComplete(ctx context.Context, attemptID uint, studentID uint) {
	attempt, err := s.getOwnAttempt(ctx, attemptID, studentID)
	if err != nil || attempt.IsCompleted {
		return
	}
	test, err := s.repo.Test().GetByID(ctx, nil, attempt.TestID)
	if err != nil {
		s.logger.Error("failed to load test for expired attempt", "attempt_id", attemptID, "error", err)
		return
	}
	if err := s.scoring.FinalizeAttempt(ctx, attempt, test); err != nil {
		s.logger.Error("failed to finalize expired attempt", "attempt_id", attemptID, "error", err)
	}
}

// Complete submits the attempt and computes the final score.
func (s *attemptService) Complete(ctx context.Context, attemptID uint, studentID uint) (*models.TestAttempt, error) {
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

	if err := s.scoring.FinalizeAttempt(ctx, attempt, test); err != nil {
		return nil, err
	}
	return attempt, nil
}

// GetResult returns the scored attempt with per-question review. Students
// see it only after results are released; correct answers and explanations
// show only when the test allows it.
func (s *attemptService) GetResult(ctx context.Context, attemptID uint, userID uint, role models.UserRole) (*AttemptResultResponse, error) {
	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	test, err := s.repo.Test().GetByID(ctx, nil, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	isStaff := role == models.RoleTeacher || role == models.RoleAdmin
	if !isStaff {
		if attempt.StudentID != userID {
			return nil, NewPermissionError(userID, attemptID, "attempt", "view_result", "not the attempt owner")
		}
		if !attempt.IsCompleted {
			return nil, NewValidationError("attempt is not submitted yet")
		}
		if !resultsVisible(test, time.Now()) {
			return nil, ErrResultsNotReleased
		}
	}

	questions, err := s.repo.Question().GetByTest(ctx, nil, test.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	questionByID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	showKey := isStaff || test.ShowCorrectAnswers
	reviews := make([]*AnswerReview, 0, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		review := &AnswerReview{
			QuestionID:    ans.QuestionID,
			GivenAnswer:   ans.AnswerText,
			IsCorrect:     ans.IsCorrect,
			MarksObtained: ans.MarksObtained,
		}
		if q, ok := questionByID[ans.QuestionID]; ok {
			review.QuestionText = q.Text
			if showKey {
				review.CorrectAnswer = q.CorrectAnswer
				if q.Explanation != nil {
					review.Explanation = *q.Explanation
				}
			}
		}
		reviews = append(reviews, review)
	}

	return &AttemptResultResponse{Attempt: attempt, Answers: reviews}, nil
}

func (s *attemptService) GetTimeStatus(ctx context.Context, attemptID uint, studentID uint) (*TimeStatus, error) {
	attempt, err := s.getOwnAttempt(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted {
		return &TimeStatus{Level: timeLevelEnded}, nil
	}

	test, err := s.repo.Test().GetByID(ctx, nil, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	status := ComputeTimeStatus(test, attempt, time.Now())
	return status, nil
}

func (s *attemptService) ListByStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *attemptService) ListByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters, userID uint) (*AttemptListResponse, error) {
	if _, err := s.repo.Test().GetByID(ctx, nil, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	attempts, total, err := s.repo.Attempt().GetByTest(ctx, nil, testID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}
