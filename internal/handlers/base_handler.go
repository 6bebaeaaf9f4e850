package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

// ErrorResponse is the uniform failure envelope. Success is always false.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the uniform success envelope.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *ListMeta   `json:"meta,omitempty"`
}

// ListMeta carries pagination details for list responses.
type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

func (h *BaseHandler) respondList(c *gin.Context, items interface{}, total int64, limit, offset int) {
	meta := &ListMeta{Total: total, Limit: limit, Page: 1, TotalPages: 1}
	if limit > 0 {
		meta.Page = offset/limit + 1
		meta.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: items, Meta: meta})
}

// parseIDParam reads a positive uint path parameter. On failure it writes
// the 400 response itself and returns 0; callers just return.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// currentUser pulls the authenticated identity set by the auth middleware.
// On failure it writes the 401 response itself and returns ok=false.
func (h *BaseHandler) currentUser(c *gin.Context) (uint, models.UserRole, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return 0, "", false
	}
	role, err := GetUserRoleFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return 0, "", false
	}
	return userID, role, true
}

var notFoundErrors = []error{
	services.ErrTestNotFound,
	services.ErrQuestionNotFound,
	services.ErrAttemptNotFound,
	services.ErrUserNotFound,
	services.ErrStudentNotFound,
	services.ErrStaffNotFound,
	services.ErrBatchNotFound,
	services.ErrCourseNotFound,
	services.ErrSubjectNotFound,
	services.ErrNotificationNotFound,
	services.ErrVideoNotFound,
}

var badRequestErrors = []error{
	services.ErrTestHasAttempts,
	services.ErrAttemptCompleted,
	services.ErrDuplicateQuestion,
	services.ErrDuplicateEmail,
	services.ErrTestNotActive,
	services.ErrAttemptExpired,
	services.ErrQuestionNotInTest,
	services.ErrResultsNotReleased,
	services.ErrLeaderboardDisabled,
	services.ErrVideoNotPublished,
	services.ErrInvalidOTP,
	services.ErrDownloadTokenInvalid,
}

// handleServiceError translates service-layer errors into HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
		return
	case errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Account is disabled"})
		return
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Permission denied",
			Details: err.Error(),
		})
		return
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: fieldErrors,
		})
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
			return
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
			return
		}
	}

	utils.FromContext(c, h.logger).Error("internal error", "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
}
