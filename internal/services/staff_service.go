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

type staffService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       utils.Logger
	validator    *validator.Validator
	hasher       auth.PasswordHasher
	emailService email.EmailService
	notification NotificationService
	publisher    events.EventPublisher
}

func NewStaffService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator, hasher auth.PasswordHasher, emailService email.EmailService, notification NotificationService, publisher events.EventPublisher) StaffService {
	return &staffService{
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

func (s *staffService) Create(ctx context.Context, req *CreateStaffRequest, actorID uint) (*models.Staff, error) {
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

	if req.SubjectID != nil {
		if _, err := s.repo.Subject().GetByID(ctx, nil, *req.SubjectID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrSubjectNotFound
			}
			return nil, fmt.Errorf("failed to get subject: %w", err)
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleTeacher
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: hash,
	}
	staff := &models.Staff{
		Designation: req.Designation,
		SubjectID:   req.SubjectID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		staff.UserID = user.ID
		if err := txRepo.Staff().Create(ctx, nil, staff); err != nil {
			return fmt.Errorf("failed to create staff record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	staff.User = *user

	s.logger.Info("staff created", "user_id", user.ID, "role", role, "by", actorID)
	s.welcome(ctx, user, req.Password)

	return staff, nil
}

func (s *staffService) welcome(ctx context.Context, user *models.User, password string) {
	if err := s.notification.NotifyUser(ctx, user.ID, models.NotificationStaffWelcome,
		"Welcome", fmt.Sprintf("Welcome aboard, %s.", user.FullName), nil); err != nil {
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
		event := events.NewEvent(events.EventStaffCreated, map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish staff event", "user_id", user.ID, "error", err)
		}
	}
}

func (s *staffService) GetByID(ctx context.Context, id uint) (*models.Staff, error) {
	staff, err := s.repo.Staff().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return staff, nil
}

func (s *staffService) Update(ctx context.Context, id uint, req *UpdateStaffRequest, actorID uint) (*models.Staff, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	staff, err := s.repo.Staff().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}

	if req.Designation != nil {
		staff.Designation = req.Designation
	}
	if req.SubjectID != nil {
		if _, err := s.repo.Subject().GetByID(ctx, nil, *req.SubjectID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrSubjectNotFound
			}
			return nil, fmt.Errorf("failed to get subject: %w", err)
		}
		staff.SubjectID = req.SubjectID
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Staff().Update(ctx, nil, staff); err != nil {
			return fmt.Errorf("failed to update staff: %w", err)
		}

		user, err := txRepo.User().GetByID(ctx, nil, staff.UserID)
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
		staff.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return staff, nil
}

func (s *staffService) Delete(ctx context.Context, id uint, actorID uint) error {
	staff, err := s.repo.Staff().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("failed to get staff: %w", err)
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Staff().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete staff: %w", err)
		}
		if err := txRepo.User().Delete(ctx, nil, staff.UserID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func (s *staffService) List(ctx context.Context, limit, offset int) (*StaffListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	staff, total, err := s.repo.Staff().List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return &StaffListResponse{Staff: staff, Total: total, Limit: limit, Offset: offset}, nil
}
