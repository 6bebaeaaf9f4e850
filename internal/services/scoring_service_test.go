package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edstack/exam-service/internal/cache"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
)

func mcqQuestion(correct string) *models.Question {
	return &models.Question{
		Type:          models.QuestionMCQ,
		Text:          "Capital of France?",
		Options:       datatypes.JSON([]byte(`{"A":"Paris","B":"London","C":"Berlin","D":"Madrid"}`)),
		CorrectAnswer: correct,
		Marks:         2,
	}
}

func TestEvaluateAnswer(t *testing.T) {
	tests := []struct {
		name     string
		question *models.Question
		answer   string
		want     bool
	}{
		{name: "exact match", question: mcqQuestion("A"), answer: "A", want: true},
		{name: "case insensitive", question: mcqQuestion("A"), answer: "a", want: true},
		{name: "whitespace trimmed", question: mcqQuestion("A"), answer: "  A  ", want: true},
		{name: "value submitted for stored key", question: mcqQuestion("A"), answer: "Paris", want: true},
		{name: "key submitted for stored value", question: mcqQuestion("Paris"), answer: "a", want: true},
		{name: "wrong option", question: mcqQuestion("A"), answer: "B", want: false},
		{name: "wrong free text", question: mcqQuestion("A"), answer: "Rome", want: false},
		{name: "blank is never correct", question: mcqQuestion("A"), answer: "   ", want: false},
		{
			name: "true_false match",
			question: &models.Question{
				Type:          models.QuestionTrueFalse,
				Text:          "The earth is round.",
				CorrectAnswer: "TRUE",
			},
			answer: "true",
			want:   true,
		},
		{
			name: "true_false has no option cross-match",
			question: &models.Question{
				Type:          models.QuestionTrueFalse,
				Text:          "The earth is round.",
				CorrectAnswer: "TRUE",
			},
			answer: "T",
			want:   false,
		},
		{
			name: "fill in the blank trims and lowercases",
			question: &models.Question{
				Type:          models.QuestionFillInBlank,
				Text:          "H2O is commonly called ____",
				CorrectAnswer: "Water",
			},
			answer: " water ",
			want:   true,
		},
		{
			name: "malformed options skip option matching",
			question: &models.Question{
				Type:          models.QuestionMCQ,
				Text:          "Broken options",
				Options:       datatypes.JSON([]byte(`not json`)),
				CorrectAnswer: "A",
			},
			answer: "Paris",
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateAnswer(tt.question, tt.answer))
		})
	}
}

func TestScoreAnswer(t *testing.T) {
	plain := &models.Test{Title: "No penalty"}
	penalized := &models.Test{Title: "Penalty", HasNegativeMarking: true, NegativeMarks: 0.5}
	question := mcqQuestion("A")

	tests := []struct {
		name        string
		test        *models.Test
		answer      string
		wantCorrect bool
		wantMarks   float64
	}{
		{name: "blank is unattempted", test: penalized, answer: "  ", wantCorrect: false, wantMarks: 0},
		{name: "correct earns marks", test: plain, answer: "A", wantCorrect: true, wantMarks: 2},
		{name: "correct earns marks under negative marking", test: penalized, answer: "A", wantCorrect: true, wantMarks: 2},
		{name: "wrong without negative marking", test: plain, answer: "B", wantCorrect: false, wantMarks: 0},
		{name: "wrong with negative marking", test: penalized, answer: "B", wantCorrect: false, wantMarks: -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, marks := ScoreAnswer(tt.test, question, 2, tt.answer)
			assert.Equal(t, tt.wantCorrect, correct)
			assert.Equal(t, tt.wantMarks, marks)
		})
	}
}

func TestResultsVisible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name string
		test *models.Test
		want bool
	}{
		{name: "running test hides results", test: &models.Test{Status: models.TestStatusInProgress}, want: false},
		{name: "completed test shows results", test: &models.Test{Status: models.TestStatusCompleted}, want: true},
		{name: "archived test shows results", test: &models.Test{Status: models.TestStatusArchived}, want: true},
		{name: "future release time holds results", test: &models.Test{Status: models.TestStatusCompleted, ResultReleaseTime: &later}, want: false},
		{name: "past release time shows results", test: &models.Test{Status: models.TestStatusCompleted, ResultReleaseTime: &earlier}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultsVisible(tt.test, now))
		})
	}
}

func TestLeaderboardCacheKeyedByLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cm := cache.NewCacheManager(client)

	repo := newStubRepo()
	repo.tests.tests[1] = &models.Test{ID: 1, Status: models.TestStatusCompleted, LeaderboardEnabled: true, CreatedBy: 9}
	for i := 1; i <= 5; i++ {
		repo.attempts.leaderboard = append(repo.attempts.leaderboard, &repositories.LeaderboardEntry{
			Rank: i, StudentID: uint(i), Score: float64(20 - i),
		})
	}

	svc := NewScoringService(repo, nil, discardLogger(), cm)
	ctx := context.Background()

	top2, err := svc.GetLeaderboard(ctx, 1, 2, 9, models.RoleTeacher)
	require.NoError(t, err)
	assert.Len(t, top2, 2)

	// A larger request after a smaller one must not be served truncated.
	top5, err := svc.GetLeaderboard(ctx, 1, 5, 9, models.RoleTeacher)
	require.NoError(t, err)
	assert.Len(t, top5, 5)
	assert.Equal(t, 2, repo.attempts.leaderboardCalls)

	// Repeating a limit hits the cache instead of the store.
	again, err := svc.GetLeaderboard(ctx, 1, 2, 9, models.RoleTeacher)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, 2, repo.attempts.leaderboardCalls)
}
