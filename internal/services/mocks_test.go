package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
)

func discardLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubRepo backs service tests with in-memory maps. Repository methods a
// test never touches stay on the embedded nil interface and panic if hit.
type stubRepo struct {
	repositories.Repository

	tests     *stubTestRepo
	links     *stubTestQuestionRepo
	questions *stubQuestionRepo
	attempts  *stubAttemptRepo
	answers   *stubAnswerRepo
	students  *stubStudentRepo
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		tests:     &stubTestRepo{tests: map[uint]*models.Test{}, batchIDs: map[uint][]uint{}},
		links:     &stubTestQuestionRepo{byTest: map[uint][]*models.TestQuestion{}},
		questions: &stubQuestionRepo{byID: map[uint]*models.Question{}},
		attempts:  &stubAttemptRepo{byID: map[uint]*models.TestAttempt{}},
		answers:   &stubAnswerRepo{rows: map[answerKey]*models.UserAnswer{}},
		students:  &stubStudentRepo{byUserID: map[uint]*models.StudentProfile{}},
	}
}

func (r *stubRepo) Test() repositories.TestRepository                 { return r.tests }
func (r *stubRepo) TestQuestion() repositories.TestQuestionRepository { return r.links }
func (r *stubRepo) Question() repositories.QuestionRepository         { return r.questions }
func (r *stubRepo) Attempt() repositories.AttemptRepository           { return r.attempts }
func (r *stubRepo) Answer() repositories.AnswerRepository             { return r.answers }
func (r *stubRepo) Student() repositories.StudentRepository           { return r.students }

func (r *stubRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

type stubTestRepo struct {
	repositories.TestRepository
	tests    map[uint]*models.Test
	batchIDs map[uint][]uint
}

func (s *stubTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	test, ok := s.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return test, nil
}

func (s *stubTestRepo) GetBatchIDs(ctx context.Context, tx *gorm.DB, testID uint) ([]uint, error) {
	return s.batchIDs[testID], nil
}

func (s *stubTestRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TestStatus) error {
	test, ok := s.tests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	test.Status = status
	return nil
}

type stubTestQuestionRepo struct {
	repositories.TestQuestionRepository
	byTest map[uint][]*models.TestQuestion
}

func (s *stubTestQuestionRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestQuestion, error) {
	return s.byTest[testID], nil
}

func (s *stubTestQuestionRepo) GetByTestAndQuestion(ctx context.Context, tx *gorm.DB, testID, questionID uint) (*models.TestQuestion, error) {
	for _, link := range s.byTest[testID] {
		if link.QuestionID == questionID {
			return link, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTestQuestionRepo) Exists(ctx context.Context, tx *gorm.DB, testID, questionID uint) (bool, error) {
	_, err := s.GetByTestAndQuestion(ctx, tx, testID, questionID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *stubTestQuestionRepo) Count(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	return int64(len(s.byTest[testID])), nil
}

func (s *stubTestQuestionRepo) AddBatch(ctx context.Context, tx *gorm.DB, links []*models.TestQuestion) error {
	for _, link := range links {
		s.byTest[link.TestID] = append(s.byTest[link.TestID], link)
	}
	return nil
}

type stubQuestionRepo struct {
	repositories.QuestionRepository
	byID map[uint]*models.Question
}

func (s *stubQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	var out []*models.Question
	for _, id := range ids {
		if q, ok := s.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *stubQuestionRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, ids []uint) error {
	return nil
}

func (s *stubQuestionRepo) DecrementUsage(ctx context.Context, tx *gorm.DB, ids []uint) error {
	return nil
}

type stubAttemptRepo struct {
	repositories.AttemptRepository
	byID   map[uint]*models.TestAttempt
	nextID uint

	leaderboard      []*repositories.LeaderboardEntry
	leaderboardCalls int
}

func (s *stubAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	s.nextID++
	attempt.ID = s.nextID
	s.byID[attempt.ID] = attempt
	return nil
}

func (s *stubAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	attempt, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (s *stubAttemptRepo) Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	if _, ok := s.byID[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.byID[attempt.ID] = attempt
	return nil
}

func (s *stubAttemptRepo) GetActiveAttempt(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestAttempt, error) {
	for _, a := range s.byID {
		if a.StudentID == studentID && a.TestID == testID && !a.IsCompleted {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAttemptRepo) GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestAttempt, error) {
	for _, a := range s.byID {
		if a.StudentID == studentID && a.TestID == testID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAttemptRepo) GetIncompleteByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestAttempt, error) {
	var out []*models.TestAttempt
	for _, a := range s.byID {
		if a.TestID == testID && !a.IsCompleted {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubAttemptRepo) GetLeaderboard(ctx context.Context, tx *gorm.DB, testID uint, limit int) ([]*repositories.LeaderboardEntry, error) {
	s.leaderboardCalls++
	entries := s.leaderboard
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

type answerKey struct {
	attemptID  uint
	questionID uint
}

type stubAnswerRepo struct {
	repositories.AnswerRepository
	rows   map[answerKey]*models.UserAnswer
	nextID uint
}

func (s *stubAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *models.UserAnswer) error {
	key := answerKey{answer.AttemptID, answer.QuestionID}
	if existing, ok := s.rows[key]; ok {
		answer.ID = existing.ID
	} else {
		s.nextID++
		answer.ID = s.nextID
	}
	s.rows[key] = answer
	return nil
}

func (s *stubAnswerRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.UserAnswer, error) {
	var out []*models.UserAnswer
	for _, row := range s.rows {
		if row.AttemptID == attemptID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubAnswerRepo) GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID uint) (*models.UserAnswer, error) {
	row, ok := s.rows[answerKey{attemptID, questionID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type stubStudentRepo struct {
	repositories.StudentRepository
	byUserID map[uint]*models.StudentProfile
}

func (s *stubStudentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.StudentProfile, error) {
	profile, ok := s.byUserID[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (s *stubStudentRepo) IncrementTotalScore(ctx context.Context, tx *gorm.DB, userID uint, delta float64) error {
	profile, ok := s.byUserID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	profile.TotalScore += delta
	return nil
}

// stubScoring records finalizations and marks the attempt submitted.
type stubScoring struct {
	ScoringService
	finalized []uint
}

func (s *stubScoring) FinalizeAttempt(ctx context.Context, attempt *models.TestAttempt, test *models.Test) error {
	s.finalized = append(s.finalized, attempt.ID)
	attempt.IsCompleted = true
	return nil
}
