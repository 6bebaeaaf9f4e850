package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes (not-found or bad-request), so services return them
// unwrapped or via %w.
var (
	ErrTestNotFound         = errors.New("test not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrStaffNotFound        = errors.New("staff member not found")
	ErrBatchNotFound        = errors.New("batch not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrVideoNotFound        = errors.New("video not found")

	ErrTestHasAttempts      = errors.New("test already has attempts")
	ErrAttemptCompleted     = errors.New("attempt is already submitted")
	ErrDuplicateQuestion    = errors.New("an identical question already exists")
	ErrDuplicateEmail       = errors.New("email is already registered")
	ErrTestNotActive        = errors.New("test is not accepting attempts")
	ErrAttemptExpired       = errors.New("attempt time has expired")
	ErrQuestionNotInTest    = errors.New("question does not belong to this test")
	ErrResultsNotReleased   = errors.New("results are not released yet")
	ErrLeaderboardDisabled  = errors.New("leaderboard is disabled for this test")
	ErrVideoNotPublished    = errors.New("video is not published")
	ErrInvalidOTP           = errors.New("invalid or expired OTP")
	ErrDownloadTokenInvalid = errors.New("download token is invalid or expired")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// ValidationError is a business rule violation with a human-readable message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PermissionError records who tried to do what to which resource.
// The reason stays server-side friendly, nothing secret goes in here.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
