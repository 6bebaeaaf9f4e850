package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/edstack/exam-service/internal/auth"
	"github.com/edstack/exam-service/internal/cache"
	"github.com/edstack/exam-service/internal/email"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
)

const (
	otpLength = 6
	otpTTL    = 10 * time.Minute
)

type authService struct {
	repo         repositories.Repository
	logger       utils.Logger
	tokens       *auth.TokenManager
	tokenTTL     time.Duration
	hasher       auth.PasswordHasher
	emailService email.EmailService
	cacheManager *cache.CacheManager
}

func NewAuthService(repo repositories.Repository, logger utils.Logger, tokens *auth.TokenManager, tokenTTL time.Duration, hasher auth.PasswordHasher, emailService email.EmailService, cacheManager *cache.CacheManager) AuthService {
	return &authService{
		repo:         repo,
		logger:       logger,
		tokens:       tokens,
		tokenTTL:     tokenTTL,
		hasher:       hasher,
		emailService: emailService,
		cacheManager: cacheManager,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.IsDisabled {
		return nil, ErrAccountDisabled
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenTTL),
		User:      user,
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func otpCacheKey(email string) string {
	return fmt.Sprintf("otp:reset:%s", email)
}

func generateOTP() (string, error) {
	digits := make([]byte, otpLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// RequestPasswordOTP mails a one-time reset code. Unknown addresses are
// ignored without error so the endpoint cannot be used to probe accounts.
func (s *authService) RequestPasswordOTP(ctx context.Context, emailAddr string) error {
	user, err := s.repo.User().GetByEmail(ctx, nil, emailAddr)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("otp requested for unknown email", "email", emailAddr)
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.IsDisabled {
		return ErrAccountDisabled
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.cacheManager.Fast.SetString(ctx, otpCacheKey(user.Email), otp, otpTTL); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	s.emailService.SendMessages(&email.EmailMessage{
		To:           []mail.Address{{Name: user.FullName, Address: user.Email}},
		Subject:      "Your password reset code",
		TemplateName: email.TemplateOTPReset,
		TemplateData: email.OTPResetData{
			FullName:  user.FullName,
			OTP:       otp,
			ExpiresIn: int(otpTTL.Minutes()),
		},
	})

	s.logger.Info("password otp issued", "user_id", user.ID)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, emailAddr, otp, newPassword string) error {
	if len(newPassword) < 8 {
		return NewValidationError("password must be at least 8 characters")
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, emailAddr)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	// GetDel makes the code single use even when the password update fails.
	stored, err := s.cacheManager.Fast.GetDel(ctx, otpCacheKey(user.Email))
	if err != nil || stored == "" || stored != otp {
		return ErrInvalidOTP
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.User().UpdatePassword(ctx, nil, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", "user_id", user.ID)
	return nil
}
