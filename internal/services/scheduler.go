package services

import (
	"context"
	"sync"
	"time"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
)

const defaultSchedulerInterval = 30 * time.Second

// Scheduler drives the clock-based test transitions: auto-starting
// published tests, auto-ending running tests past their window, and
// force-submitting attempts that outlived their deadline.
type Scheduler struct {
	repo     repositories.Repository
	logger   utils.Logger
	test     TestService
	scoring  ScoringService
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(repo repositories.Repository, logger utils.Logger, test TestService, scoring ScoringService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultSchedulerInterval
	}
	return &Scheduler{
		repo:     repo,
		logger:   logger,
		test:     test,
		scoring:  scoring,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. Call Stop to shut it down.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		s.logger.Info("scheduler started", "interval", s.interval.String())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) tick(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	s.autoStartTests(ctx, now)
	s.autoEndTests(ctx, now)
	s.sweepExpiredAttempts(ctx, now)
}

func (s *Scheduler) autoStartTests(ctx context.Context, now time.Time) {
	tests, err := s.repo.Test().GetDueForAutoStart(ctx, nil, now)
	if err != nil {
		s.logger.Error("failed to load tests due for auto start", "error", err)
		return
	}
	for _, test := range tests {
		if _, err := s.test.Start(ctx, test.ID, test.CreatedBy); err != nil {
			s.logger.Error("failed to auto-start test", "test_id", test.ID, "error", err)
			continue
		}
		s.logger.Info("test auto-started", "test_id", test.ID, "title", test.Title)
	}
}

func (s *Scheduler) autoEndTests(ctx context.Context, now time.Time) {
	tests, err := s.repo.Test().GetDueForAutoEnd(ctx, nil, now)
	if err != nil {
		s.logger.Error("failed to load tests due for auto end", "error", err)
		return
	}
	for _, test := range tests {
		if _, err := s.test.Complete(ctx, test.ID, test.CreatedBy); err != nil {
			s.logger.Error("failed to auto-end test", "test_id", test.ID, "error", err)
			continue
		}
		s.logger.Info("test auto-ended", "test_id", test.ID, "title", test.Title)
	}
}

// sweepExpiredAttempts force-submits open attempts whose deadline plus
// grace period has passed, so stale clients cannot keep an attempt alive.
func (s *Scheduler) sweepExpiredAttempts(ctx context.Context, now time.Time) {
	attempts, err := s.repo.Attempt().GetExpired(ctx, nil, now)
	if err != nil {
		s.logger.Error("failed to load expired attempts", "error", err)
		return
	}

	testByID := make(map[uint]*models.Test)
	for _, attempt := range attempts {
		test, ok := testByID[attempt.TestID]
		if !ok {
			test, err = s.repo.Test().GetByID(ctx, nil, attempt.TestID)
			if err != nil {
				s.logger.Error("failed to load test for expired attempt",
					"attempt_id", attempt.ID, "test_id", attempt.TestID, "error", err)
				continue
			}
			testByID[attempt.TestID] = test
		}

		if err := s.scoring.FinalizeAttempt(ctx, attempt, test); err != nil {
			s.logger.Error("failed to finalize expired attempt",
				"attempt_id", attempt.ID, "test_id", attempt.TestID, "error", err)
			continue
		}
		s.logger.Info("expired attempt finalized", "attempt_id", attempt.ID, "test_id", attempt.TestID)
	}
}
