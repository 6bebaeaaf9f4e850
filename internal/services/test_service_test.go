package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edstack/exam-service/internal/events"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/validator"
)

func TestValidateSchedule(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	assert.NoError(t, validateSchedule(nil, nil))
	assert.NoError(t, validateSchedule(&start, nil))
	assert.NoError(t, validateSchedule(nil, &end))
	assert.NoError(t, validateSchedule(&start, &end))

	assert.Error(t, validateSchedule(&end, &start), "end before start")
	assert.Error(t, validateSchedule(&start, &start), "end equal to start")
}

func TestFilterStudentVisible(t *testing.T) {
	tests := []*models.Test{
		{ID: 1, Status: models.TestStatusDraft},
		{ID: 2, Status: models.TestStatusNotStarted},
		{ID: 3, Status: models.TestStatusInProgress},
		{ID: 4, Status: models.TestStatusCompleted},
		{ID: 5, Status: models.TestStatusArchived},
	}

	visible := filterStudentVisible(tests)

	ids := make([]uint, 0, len(visible))
	for _, test := range visible {
		ids = append(ids, test.ID)
	}
	assert.Equal(t, []uint{2, 3, 4}, ids, "drafts and archived tests stay hidden from students")
}

func TestApplyTestUpdate(t *testing.T) {
	test := &models.Test{
		Title:            "Original",
		TimeLimitMinutes: 60,
		AllowRevisit:     true,
	}

	title := "Updated"
	limit := 90
	negative := true
	negativeMarks := 0.25
	applyTestUpdate(test, &UpdateTestRequest{
		Title:              &title,
		TimeLimitMinutes:   &limit,
		HasNegativeMarking: &negative,
		NegativeMarks:      &negativeMarks,
	})

	assert.Equal(t, "Updated", test.Title)
	assert.Equal(t, 90, test.TimeLimitMinutes)
	assert.True(t, test.HasNegativeMarking)
	assert.Equal(t, 0.25, test.NegativeMarks)
	assert.True(t, test.AllowRevisit, "untouched fields keep their value")
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, dedupeIDs([]uint{3, 1, 3, 2, 1}))
	assert.Empty(t, dedupeIDs(nil))
}

func newTestServiceFixture(t *testing.T) (*stubRepo, *stubScoring, TestService) {
	t.Helper()
	repo := newStubRepo()
	scoring := &stubScoring{}
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewTestService(repo, nil, discardLogger(), validator.New(), publisher, nil, scoring)

	repo.tests.tests[1] = &models.Test{
		ID:               1,
		Title:            "Algebra unit test",
		Status:           models.TestStatusInProgress,
		TimeLimitMinutes: 60,
		CreatedBy:        9,
	}
	return repo, scoring, svc
}

func TestCompleteSweepsOpenAttempts(t *testing.T) {
	repo, scoring, svc := newTestServiceFixture(t)
	repo.attempts.byID[1] = &models.TestAttempt{ID: 1, TestID: 1, StudentID: 7, StartTime: time.Now().Add(-time.Hour)}
	repo.attempts.byID[2] = &models.TestAttempt{ID: 2, TestID: 1, StudentID: 8, StartTime: time.Now().Add(-time.Hour)}
	repo.attempts.byID[3] = &models.TestAttempt{ID: 3, TestID: 1, StudentID: 6, StartTime: time.Now().Add(-2 * time.Hour), IsCompleted: true}
	repo.attempts.nextID = 3

	test, err := svc.Complete(context.Background(), 1, 9)
	require.NoError(t, err)

	assert.Equal(t, models.TestStatusCompleted, test.Status)
	// Only the two attempts still open get finalized.
	assert.Equal(t, []uint{1, 2}, scoring.finalized)
	assert.True(t, repo.attempts.byID[1].IsCompleted)
	assert.True(t, repo.attempts.byID[2].IsCompleted)
}

func TestAddQuestionsToRunningTest(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	repo.questions.byID[11] = &models.Question{ID: 11, Type: models.QuestionFillInBlank, Text: "2+2?", CorrectAnswer: "4", Marks: 1}

	// A test created with a past start time goes live immediately and must
	// still accept its question set.
	err := svc.AddQuestions(context.Background(), 1, []AddQuestionRequest{{QuestionID: 11}}, 9)
	require.NoError(t, err)
	assert.Len(t, repo.links.byTest[1], 1)
}

func TestAddQuestionsRejectedAfterTestEnds(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	repo.tests.tests[1].Status = models.TestStatusCompleted
	repo.questions.byID[11] = &models.Question{ID: 11, Type: models.QuestionFillInBlank, Text: "2+2?", CorrectAnswer: "4", Marks: 1}

	err := svc.AddQuestions(context.Background(), 1, []AddQuestionRequest{{QuestionID: 11}}, 9)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, repo.links.byTest[1])
}
