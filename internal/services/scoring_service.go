package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/cache"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
)

type scoringService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       utils.Logger
	cacheManager *cache.CacheManager
}

func NewScoringService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, cacheManager *cache.CacheManager) ScoringService {
	return &scoringService{
		repo:         repo,
		db:           db,
		logger:       logger,
		cacheManager: cacheManager,
	}
}

// ===== ANSWER EVALUATION =====

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EvaluateAnswer compares a submitted answer against the stored key.
// Matching is case-insensitive on trimmed text. For option-based questions
// the submission may carry either the option key or the option value.
func EvaluateAnswer(question *models.Question, answerText string) bool {
	given := normalizeAnswer(answerText)
	if given == "" {
		return false
	}

	want := normalizeAnswer(question.CorrectAnswer)
	if given == want {
		return true
	}

	switch question.Type {
	case models.QuestionMCQ, models.QuestionChoiceBased:
		var options models.MCQOptions
		if err := json.Unmarshal(question.Options, &options); err != nil {
			return false
		}
		for key, value := range options {
			k, v := normalizeAnswer(key), normalizeAnswer(value)
			// Key stored, value submitted or the other way around.
			if k == want && v == given {
				return true
			}
			if v == want && k == given {
				return true
			}
		}
	}

	return false
}

// ScoreAnswer returns correctness and the marks delta for one answer.
// A blank answer is unattempted and never penalized. Wrong answers cost
// the test's negative marks when negative marking is on.
func ScoreAnswer(test *models.Test, question *models.Question, marks float64, answerText string) (bool, float64) {
	if strings.TrimSpace(answerText) == "" {
		return false, 0
	}
	if EvaluateAnswer(question, answerText) {
		return true, marks
	}
	if test.HasNegativeMarking {
		return false, -test.NegativeMarks
	}
	return false, 0
}

// ===== ATTEMPT FINALIZATION =====

// FinalizeAttempt recomputes the attempt aggregates from the stored answer
// rows, marks it completed, and credits the student's cumulative score.
// The attempt score is floored at zero even under heavy negative marking.
func (s *scoringService) FinalizeAttempt(ctx context.Context, attempt *models.TestAttempt, test *models.Test) error {
	if attempt.IsCompleted {
		return ErrAttemptCompleted
	}

	links, err := s.repo.TestQuestion().GetByTest(ctx, nil, test.ID)
	if err != nil {
		return fmt.Errorf("failed to load test questions: %w", err)
	}

	answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	answerByQuestion := make(map[uint]*models.UserAnswer, len(answers))
	for _, ans := range answers {
		answerByQuestion[ans.QuestionID] = ans
	}

	var score float64
	var correct, wrong, unattempted int
	for _, link := range links {
		ans, ok := answerByQuestion[link.QuestionID]
		if !ok || strings.TrimSpace(ans.AnswerText) == "" {
			unattempted++
			continue
		}
		if ans.IsCorrect {
			correct++
		} else {
			wrong++
		}
		score += ans.MarksObtained
	}
	if score < 0 {
		score = 0
	}

	now := time.Now()
	attempt.SubmitTime = &now
	attempt.IsCompleted = true
	attempt.Score = score
	attempt.CorrectCount = correct
	attempt.WrongCount = wrong
	attempt.UnattemptedCount = unattempted
	if attempted := correct + wrong; attempted > 0 {
		attempt.Accuracy = float64(correct) / float64(attempted) * 100
	} else {
		attempt.Accuracy = 0
	}
	attempt.TimeTakenSeconds = int(now.Sub(attempt.StartTime).Seconds())
	if test.TimeLimitMinutes > 0 {
		if limit := test.TimeLimitMinutes * 60; attempt.TimeTakenSeconds > limit {
			attempt.TimeTakenSeconds = limit
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Attempt().Update(ctx, nil, attempt); err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		if score > 0 {
			if err := txRepo.Student().IncrementTotalScore(ctx, nil, attempt.StudentID, score); err != nil {
				if !repositories.IsNotFoundError(err) {
					return fmt.Errorf("failed to credit total score: %w", err)
				}
				// No profile row yet, skip the cumulative credit.
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.SafeDelete(ctx, s.cacheManager.Leaderboard, fmt.Sprintf("test:%d", test.ID))

	s.logger.Info("attempt finalized",
		"attempt_id", attempt.ID,
		"test_id", test.ID,
		"student_id", attempt.StudentID,
		"score", score,
		"correct", correct,
		"wrong", wrong,
		"unattempted", unattempted)

	return nil
}

// ===== RANKING =====

func (s *scoringService) GetLeaderboard(ctx context.Context, testID uint, limit int, userID uint, role models.UserRole) ([]*repositories.LeaderboardEntry, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if !test.LeaderboardEnabled && role == models.RoleStudent {
		return nil, ErrLeaderboardDisabled
	}
	if role == models.RoleStudent && !resultsVisible(test, time.Now()) {
		return nil, ErrResultsNotReleased
	}

	if limit <= 0 {
		limit = 50
	}

	// The limit is part of the key so a short cached list is never served
	// truncated to a larger request.
	cacheKey := fmt.Sprintf("test:%d:top:%d", testID, limit)
	var entries []*repositories.LeaderboardEntry
	err = s.cacheManager.Leaderboard.CacheOrExecute(ctx, cacheKey, &entries, cache.LeaderboardCacheConfig.TTL, func() (interface{}, error) {
		fresh, err := s.repo.Attempt().GetLeaderboard(ctx, nil, testID, limit)
		if err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *scoringService) GetStudentSummary(ctx context.Context, studentID uint) (*repositories.StudentTestSummary, error) {
	summary, err := s.repo.Attempt().GetStudentSummary(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student summary: %w", err)
	}
	return summary, nil
}

// resultsVisible reports whether students may see detailed results now.
func resultsVisible(test *models.Test, now time.Time) bool {
	if test.Status != models.TestStatusCompleted && test.Status != models.TestStatusArchived {
		return false
	}
	if test.ResultReleaseTime != nil && now.Before(*test.ResultReleaseTime) {
		return false
	}
	return true
}
