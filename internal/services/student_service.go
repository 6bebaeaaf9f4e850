package services

import (
	"context"
	"fmt"
	"net/mail"

	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/auth"
	"github.com/edstack/exam-service/internal/email"
	"github.com/edstack/exam-service/internal/events"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type studentService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       utils.Logger
	validator    *validator.Validator
	hasher       auth.PasswordHasher
	emailService email.EmailService
	notification NotificationService
	publisher    events.EventPublisher
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator, hasher auth.PasswordHasher, emailService email.EmailService, notification NotificationService, publisher events.EventPublisher) StudentService {
	return &studentService{
		repo:         repo,
		db:           db,
		logger:       logger,
		validator:    v,
		hasher:       hasher,
		emailService: emailService,
		notification: notification,
		publisher:    publisher,
	}
}

// Create registers the account and profile in one transaction, then sends
// the welcome email and notification best-effort.
func (s *studentService) Create(ctx context.Context, req *CreateStudentRequest, actorID uint) (*models.StudentProfile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	if req.BatchID != nil {
		if _, err := s.repo.Batch().GetByID(ctx, nil, *req.BatchID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrBatchNotFound
			}
			return nil, fmt.Errorf("failed to get batch: %w", err)
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         models.RoleStudent,
		PasswordHash: hash,
	}
	profile := &models.StudentProfile{
		BatchID:      req.BatchID,
		EnrollmentNo: req.EnrollmentNo,
		GuardianName: req.GuardianName,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		profile.UserID = user.ID
		if err := txRepo.Student().Create(ctx, nil, profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		if req.BatchID != nil {
			if err := txRepo.Batch().UpdateStudentCount(ctx, nil, *req.BatchID, 1); err != nil {
				return fmt.Errorf("failed to bump batch count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	profile.User = *user

	s.logger.Info("student created", "user_id", user.ID, "batch_id", req.BatchID, "by", actorID)
	s.welcome(ctx, user, req.Password)

	return profile, nil
}

func (s *studentService) welcome(ctx context.Context, user *models.User, password string) {
	if err := s.notification.NotifyUser(ctx, user.ID, models.NotificationStudentWelcome,
		"Welcome", fmt.Sprintf("Welcome to the platform, %s.", user.FullName), nil); err != nil {
		s.logger.Error("failed to create welcome notification", "user_id", user.ID, "error", err)
	}

	s.emailService.SendMessages(&email.EmailMessage{
		To:           []mail.Address{{Name: user.FullName, Address: user.Email}},
		Subject:      "Welcome to EdStack",
		TemplateName: email.TemplateWelcome,
		TemplateData: email.WelcomeData{
			FullName: user.FullName,
			Email:    user.Email,
			Password: password,
		},
	})

	if s.publisher != nil {
		event := events.NewEvent(events.EventStudentCreated, map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish student event", "user_id", user.ID, "error", err)
		}
	}
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*models.StudentProfile, error) {
	profile, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return profile, nil
}

func (s *studentService) GetByUserID(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	profile, err := s.repo.Student().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return profile, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req *UpdateStudentRequest, actorID uint) (*models.StudentProfile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	oldBatchID := profile.BatchID
	if req.BatchID != nil {
		if _, err := s.repo.Batch().GetByID(ctx, nil, *req.BatchID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrBatchNotFound
			}
			return nil, fmt.Errorf("failed to get batch: %w", err)
		}
		profile.BatchID = req.BatchID
	}
	if req.EnrollmentNo != nil {
		profile.EnrollmentNo = req.EnrollmentNo
	}
	if req.GuardianName != nil {
		profile.GuardianName = req.GuardianName
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Student().Update(ctx, nil, profile); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		user, err := txRepo.User().GetByID(ctx, nil, profile.UserID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.Phone != nil {
			user.Phone = req.Phone
		}
		if req.IsDisabled != nil {
			user.IsDisabled = *req.IsDisabled
		}
		if err := txRepo.User().Update(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		profile.User = *user

		if req.BatchID != nil && (oldBatchID == nil || *oldBatchID != *req.BatchID) {
			if oldBatchID != nil {
				if err := txRepo.Batch().UpdateStudentCount(ctx, nil, *oldBatchID, -1); err != nil {
					return fmt.Errorf("failed to decrement old batch: %w", err)
				}
			}
			if err := txRepo.Batch().UpdateStudentCount(ctx, nil, *req.BatchID, 1); err != nil {
				return fmt.Errorf("failed to increment new batch: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *studentService) Delete(ctx context.Context, id uint, actorID uint) error {
	profile, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to get student: %w", err)
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Student().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		if err := txRepo.User().Delete(ctx, nil, profile.UserID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if profile.BatchID != nil {
			if err := txRepo.Batch().UpdateStudentCount(ctx, nil, *profile.BatchID, -1); err != nil {
				return fmt.Errorf("failed to decrement batch count: %w", err)
			}
		}
		return nil
	})
}

func (s *studentService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	role := models.RoleStudent
	filters.Role = &role
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return &UserListResponse{Users: users, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *studentService) GetSummary(ctx context.Context, userID uint) (*repositories.StudentTestSummary, error) {
	summary, err := s.repo.Attempt().GetStudentSummary(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return summary, nil
}
