package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/auth"
	"github.com/edstack/exam-service/internal/cache"
	"github.com/edstack/exam-service/internal/email"
	"github.com/edstack/exam-service/internal/events"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

// ServiceManagerConfig carries the cross-service settings the manager
// needs when wiring everything together.
type ServiceManagerConfig struct {
	TokenTTL          time.Duration
	VideoTokenTTL     time.Duration
	SchedulerInterval time.Duration
	SchedulerEnabled  bool
}

func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		TokenTTL:          24 * time.Hour,
		VideoTokenTTL:     15 * time.Minute,
		SchedulerInterval: 30 * time.Second,
		SchedulerEnabled:  true,
	}
}

// serviceManager implements ServiceManager
type serviceManager struct {
	// Dependencies
	db           *gorm.DB
	repo         repositories.Repository
	logger       utils.Logger
	validator    *validator.Validator
	cacheManager *cache.CacheManager
	tokens       *auth.TokenManager
	hasher       auth.PasswordHasher
	emailService email.EmailService
	publisher    events.EventPublisher
	config       ServiceManagerConfig

	// Service instances
	testService         TestService
	attemptService      AttemptService
	scoringService      ScoringService
	questionService     QuestionService
	notificationService NotificationService
	videoService        VideoService
	studentService      StudentService
	staffService        StaffService
	orgService          OrgService
	authService         AuthService
	scheduler           *Scheduler

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all external dependencies.
func NewServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	logger utils.Logger,
	v *validator.Validator,
	cacheManager *cache.CacheManager,
	tokens *auth.TokenManager,
	hasher auth.PasswordHasher,
	emailService email.EmailService,
	publisher events.EventPublisher,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		db:           db,
		repo:         repo,
		logger:       logger,
		validator:    v,
		cacheManager: cacheManager,
		tokens:       tokens,
		hasher:       hasher,
		emailService: emailService,
		publisher:    publisher,
		config:       config,
	}
}

// Initialize builds every service in dependency order and starts the
// background scheduler when enabled.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("initializing service manager")

	// Leaf services first, then the ones that depend on them.
	sm.scoringService = NewScoringService(sm.repo, sm.db, sm.logger, sm.cacheManager)
	sm.notificationService = NewNotificationService(sm.repo, sm.db, sm.logger, sm.publisher)
	sm.questionService = NewQuestionService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.videoService = NewVideoService(sm.repo, sm.db, sm.logger, sm.validator, sm.cacheManager, sm.config.VideoTokenTTL)
	sm.orgService = NewOrgService(sm.repo, sm.db, sm.logger, sm.validator)

	sm.testService = NewTestService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, sm.notificationService, sm.scoringService)
	sm.attemptService = NewAttemptService(sm.repo, sm.db, sm.logger, sm.validator, sm.scoringService)

	sm.studentService = NewStudentService(sm.repo, sm.db, sm.logger, sm.validator, sm.hasher, sm.emailService, sm.notificationService, sm.publisher)
	sm.staffService = NewStaffService(sm.repo, sm.db, sm.logger, sm.validator, sm.hasher, sm.emailService, sm.notificationService, sm.publisher)
	sm.authService = NewAuthService(sm.repo, sm.logger, sm.tokens, sm.config.TokenTTL, sm.hasher, sm.emailService, sm.cacheManager)

	if err := sm.validateHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if sm.config.SchedulerEnabled {
		sm.scheduler = NewScheduler(sm.repo, sm.logger, sm.testService, sm.scoringService, sm.config.SchedulerInterval)
		sm.scheduler.Start()
	}

	sm.initialized = true
	sm.logger.Info("service manager initialized")
	return nil
}

func (sm *serviceManager) validateHealth(ctx context.Context) error {
	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository ping failed: %w", err)
	}
	return nil
}

// Service getters

func (sm *serviceManager) mustInit() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Test() TestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.testService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.attemptService
}

func (sm *serviceManager) Scoring() ScoringService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.scoringService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.questionService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.notificationService
}

func (sm *serviceManager) Video() VideoService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.videoService
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.studentService
}

func (sm *serviceManager) Staff() StaffService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.staffService
}

func (sm *serviceManager) Org() OrgService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.orgService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.authService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	return sm.validateHealth(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("shutting down service manager")

	if sm.scheduler != nil {
		sm.scheduler.Stop()
	}

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("service manager shut down")
	return nil
}
