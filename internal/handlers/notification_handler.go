package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

type broadcastRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Type     string `json:"type"`
	BatchIDs []uint `json:"batch_ids"`
	UserID   *uint  `json:"user_id"`
}

func (r *broadcastRequest) notificationType() models.NotificationType {
	if r.Type == "" {
		return models.NotificationGeneral
	}
	return models.NotificationType(r.Type)
}

// Broadcast sends an announcement to everyone, to batches, or to one user
// @Summary Send notification
// @Tags notifications
// @Accept json
// @Param notification body broadcastRequest true "Notification data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	h.LogRequest(c, "Broadcasting notification")

	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	var err error
	switch {
	case req.UserID != nil:
		err = h.notificationService.NotifyUser(ctx, *req.UserID, req.notificationType(), req.Title, req.Message, nil)
	case len(req.BatchIDs) > 0:
		err = h.notificationService.NotifyBatches(ctx, req.BatchIDs, req.notificationType(), req.Title, req.Message, nil)
	default:
		err = h.notificationService.NotifyAll(ctx, req.notificationType(), req.Title, req.Message, nil)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Notification sent", nil)
}

// ListNotifications lists the caller's notifications including broadcasts
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Unread only"
// @Success 200 {object} services.NotificationListResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.NotificationFilters{
		UnreadOnly: c.Query("unread") == "true",
	}
	filters.Limit, filters.Offset = h.parsePagination(c)

	resp, err := h.notificationService.ListForUser(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Notifications, resp.Total, resp.Limit, resp.Offset)
}

// MarkNotificationRead marks one notification as read
// @Summary Mark notification read
// @Tags notifications
// @Param id path uint true "Notification ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Notification marked read", nil)
}

// MarkAllNotificationsRead marks every notification of the caller as read
// @Summary Mark all notifications read
// @Tags notifications
// @Success 200 {object} SuccessResponse
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "All notifications marked read", nil)
}

// GetUnreadCount returns the caller's unread notification count
// @Summary Get unread count
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", gin.H{"unread": count})
}
