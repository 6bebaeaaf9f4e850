package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
)

type VideoHandler struct {
	BaseHandler
	videoService services.VideoService
}

func NewVideoHandler(videoService services.VideoService, logger utils.Logger) *VideoHandler {
	return &VideoHandler{
		BaseHandler:  NewBaseHandler(logger),
		videoService: videoService,
	}
}

// CreateVideo registers a new lecture video
// @Summary Create video
// @Tags videos
// @Accept json
// @Produce json
// @Param video body services.CreateVideoRequest true "Video data"
// @Success 201 {object} models.Video
// @Router /videos [post]
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	h.LogRequest(c, "Creating video")

	var req services.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	video, err := h.videoService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "", video)
}

// GetVideo retrieves a video by ID
// @Summary Get video
// @Tags videos
// @Produce json
// @Param id path uint true "Video ID"
// @Success 200 {object} models.Video
// @Failure 404 {object} ErrorResponse
// @Router /videos/{id} [get]
func (h *VideoHandler) GetVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	_, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	video, err := h.videoService.GetByID(c.Request.Context(), id, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", video)
}

// UpdateVideo updates video metadata
// @Summary Update video
// @Tags videos
// @Accept json
// @Produce json
// @Param id path uint true "Video ID"
// @Success 200 {object} models.Video
// @Router /videos/{id} [put]
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	video, err := h.videoService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", video)
}

// DeleteVideo removes a video
// @Summary Delete video
// @Tags videos
// @Param id path uint true "Video ID"
// @Success 200 {object} SuccessResponse
// @Router /videos/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting video", "video_id", id)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Video deleted successfully", nil)
}

// ListVideos lists videos, published-only for students
// @Summary List videos
// @Tags videos
// @Produce json
// @Success 200 {object} services.VideoListResponse
// @Router /videos [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	_, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.VideoFilters
	filters.Limit, filters.Offset = h.parsePagination(c)
	if v, err := strconv.ParseUint(c.Query("subject_id"), 10, 32); err == nil {
		id := uint(v)
		filters.SubjectID = &id
	}
	if v, err := strconv.ParseUint(c.Query("course_id"), 10, 32); err == nil {
		id := uint(v)
		filters.CourseID = &id
	}

	resp, err := h.videoService.List(c.Request.Context(), filters, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Videos, resp.Total, resp.Limit, resp.Offset)
}

// SetVideoPublished toggles student visibility of a video
// @Summary Publish or unpublish video
// @Tags videos
// @Accept json
// @Param id path uint true "Video ID"
// @Success 200 {object} models.Video
// @Router /videos/{id}/publish [put]
func (h *VideoHandler) SetVideoPublished(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	video, err := h.videoService.SetPublished(c.Request.Context(), id, req.Published, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", video)
}

// AuthorizeDownload mints a single-use download token for a video
// @Summary Authorize video download
// @Tags videos
// @Produce json
// @Param id path uint true "Video ID"
// @Success 200 {object} services.DownloadGrant
// @Failure 400 {object} ErrorResponse
// @Router /videos/{id}/download [post]
func (h *VideoHandler) AuthorizeDownload(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	grant, err := h.videoService.AuthorizeDownload(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", grant)
}

// ResolveDownload consumes a download token and redirects to the video URL.
// The token is burned on first use, a second request gets 400.
// @Summary Resolve video download token
// @Tags videos
// @Param token path string true "Download token"
// @Success 302
// @Failure 400 {object} ErrorResponse
// @Router /videos/download/{token} [get]
func (h *VideoHandler) ResolveDownload(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing download token"})
		return
	}

	video, err := h.videoService.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, video.URL)
}
