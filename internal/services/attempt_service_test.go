package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/validator"
)

func TestAttemptDeadline(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &models.TestAttempt{StartTime: start}

	t.Run("unbounded without limit or schedule", func(t *testing.T) {
		deadline := AttemptDeadline(&models.Test{}, attempt)
		assert.True(t, deadline.IsZero())
	})

	t.Run("time limit bounds the attempt", func(t *testing.T) {
		deadline := AttemptDeadline(&models.Test{TimeLimitMinutes: 90}, attempt)
		assert.Equal(t, start.Add(90*time.Minute), deadline)
	})

	t.Run("scheduled end bounds when earlier", func(t *testing.T) {
		end := start.Add(30 * time.Minute)
		deadline := AttemptDeadline(&models.Test{TimeLimitMinutes: 90, EndTimeScheduled: &end}, attempt)
		assert.Equal(t, end, deadline)
	})

	t.Run("time limit wins when earlier than scheduled end", func(t *testing.T) {
		end := start.Add(3 * time.Hour)
		deadline := AttemptDeadline(&models.Test{TimeLimitMinutes: 60, EndTimeScheduled: &end}, attempt)
		assert.Equal(t, start.Add(time.Hour), deadline)
	})

	t.Run("scheduled end alone bounds the attempt", func(t *testing.T) {
		end := start.Add(2 * time.Hour)
		deadline := AttemptDeadline(&models.Test{EndTimeScheduled: &end}, attempt)
		assert.Equal(t, end, deadline)
	})
}

func TestComputeTimeStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &models.TestAttempt{StartTime: start}
	test := &models.Test{TimeLimitMinutes: 60, GracePeriodMinutes: 5}
	deadline := start.Add(time.Hour)

	tests := []struct {
		name          string
		now           time.Time
		wantLevel     string
		wantRemaining int
	}{
		{name: "plenty of time", now: start.Add(10 * time.Minute), wantLevel: timeLevelNone, wantRemaining: 50 * 60},
		{name: "notice inside fifteen minutes", now: deadline.Add(-14 * time.Minute), wantLevel: timeLevelNotice, wantRemaining: 14 * 60},
		{name: "warning inside five minutes", now: deadline.Add(-4 * time.Minute), wantLevel: timeLevelWarning, wantRemaining: 4 * 60},
		{name: "critical inside one minute", now: deadline.Add(-30 * time.Second), wantLevel: timeLevelCritical, wantRemaining: 30},
		{name: "grace window keeps accepting", now: deadline.Add(3 * time.Minute), wantLevel: timeLevelCritical, wantRemaining: 0},
		{name: "past grace is ended", now: deadline.Add(6 * time.Minute), wantLevel: timeLevelEnded, wantRemaining: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ComputeTimeStatus(test, attempt, tt.now)
			assert.Equal(t, tt.wantLevel, status.Level)
			assert.Equal(t, tt.wantRemaining, status.RemainingSeconds)
			assert.Equal(t, 5*60, status.GraceSeconds)
			assert.Equal(t, deadline, status.Deadline)
		})
	}

	t.Run("unbounded attempt reports no deadline", func(t *testing.T) {
		status := ComputeTimeStatus(&models.Test{}, attempt, start)
		assert.Equal(t, timeLevelNone, status.Level)
		assert.Equal(t, -1, status.RemainingSeconds)
		assert.True(t, status.Deadline.IsZero())
	})
}

func newAttemptFixture(t *testing.T) (*stubRepo, *stubScoring, AttemptService) {
	t.Helper()
	repo := newStubRepo()
	scoring := &stubScoring{}
	svc := NewAttemptService(repo, nil, discardLogger(), validator.New(), scoring)

	repo.tests.tests[1] = &models.Test{
		ID:               1,
		Title:            "Algebra unit test",
		Status:           models.TestStatusInProgress,
		TimeLimitMinutes: 60,
		AllowRevisit:     true,
		CreatedBy:        9,
	}
	repo.students.byUserID[7] = &models.StudentProfile{ID: 1, UserID: 7}
	repo.links.byTest[1] = []*models.TestQuestion{{
		TestID:     1,
		QuestionID: 11,
		Order:      1,
		Question: models.Question{
			ID:            11,
			Type:          models.QuestionFillInBlank,
			Text:          "Capital of France?",
			CorrectAnswer: "Paris",
			Marks:         2,
		},
	}}
	return repo, scoring, svc
}

func TestStartRejectsSecondCompletedAttempt(t *testing.T) {
	repo, _, svc := newAttemptFixture(t)
	repo.attempts.byID[1] = &models.TestAttempt{
		ID: 1, TestID: 1, StudentID: 7,
		StartTime: time.Now().Add(-time.Hour), IsCompleted: true,
	}
	repo.attempts.nextID = 1

	_, err := svc.Start(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrAttemptCompleted)
}

func TestStartResumesActiveAttempt(t *testing.T) {
	repo, _, svc := newAttemptFixture(t)
	repo.attempts.byID[1] = &models.TestAttempt{
		ID: 1, TestID: 1, StudentID: 7, StartTime: time.Now().Add(-time.Minute),
	}
	repo.attempts.nextID = 1
	require.NoError(t, repo.answers.Upsert(context.Background(), nil, &models.UserAnswer{
		AttemptID: 1, QuestionID: 11, AnswerText: "Paris",
	}))

	resp, err := svc.Start(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.True(t, resp.Resumed)
	assert.Equal(t, uint(1), resp.Attempt.ID)
	assert.Equal(t, "Paris", resp.SavedAnswers[11])
	assert.Len(t, repo.attempts.byID, 1)
}

func TestStartRejectsTestNotInProgress(t *testing.T) {
	repo, _, svc := newAttemptFixture(t)
	repo.tests.tests[1].Status = models.TestStatusNotStarted

	_, err := svc.Start(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrTestNotActive)
}

func TestSubmitAnswerOverwritesPriorAnswer(t *testing.T) {
	repo, _, svc := newAttemptFixture(t)
	repo.attempts.byID[1] = &models.TestAttempt{
		ID: 1, TestID: 1, StudentID: 7, StartTime: time.Now().Add(-time.Minute),
	}
	repo.attempts.nextID = 1

	ctx := context.Background()
	require.NoError(t, svc.SubmitAnswer(ctx, 1, &SubmitAnswerRequest{QuestionID: 11, AnswerText: "Rome"}, 7))
	require.NoError(t, svc.SubmitAnswer(ctx, 1, &SubmitAnswerRequest{QuestionID: 11, AnswerText: "Paris"}, 7))

	require.Len(t, repo.answers.rows, 1)
	row := repo.answers.rows[answerKey{1, 11}]
	assert.Equal(t, "Paris", row.AnswerText)
	assert.True(t, row.IsCorrect)
	assert.Equal(t, 2.0, row.MarksObtained)
}
