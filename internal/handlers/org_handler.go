package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
)

// OrgHandler serves the batch, course, and subject CRUD endpoints.
type OrgHandler struct {
	BaseHandler
	orgService services.OrgService
}

func NewOrgHandler(orgService services.OrgService, logger utils.Logger) *OrgHandler {
	return &OrgHandler{
		BaseHandler: NewBaseHandler(logger),
		orgService:  orgService,
	}
}

// Batches

// CreateBatch creates a student batch
// @Summary Create batch
// @Tags organization
// @Accept json
// @Produce json
// @Success 201 {object} models.Batch
// @Router /batches [post]
func (h *OrgHandler) CreateBatch(c *gin.Context) {
	var batch models.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	created, err := h.orgService.CreateBatch(c.Request.Context(), &batch)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, "", created)
}

// GetBatch retrieves a batch
// @Summary Get batch
// @Tags organization
// @Produce json
// @Param id path uint true "Batch ID"
// @Success 200 {object} models.Batch
// @Router /batches/{id} [get]
func (h *OrgHandler) GetBatch(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	batch, err := h.orgService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "", batch)
}

// UpdateBatch updates a batch
// @Summary Update batch
// @Tags organization
// @Accept json
// @Produce json
// @Param id path uint true "Batch ID"
// @Success 200 {object} models.Batch
// @Router /batches/{id} [put]
func (h *OrgHandler) UpdateBatch(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var batch models.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	updated, err := h.orgService.UpdateBatch(c.Request.Context(), id, &batch)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "", updated)
}

// DeleteBatch removes an empty batch
// @Summary Delete batch
// @Tags organization
// @Param id path uint true "Batch ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /batches/{id} [delete]
func (h *OrgHandler) DeleteBatch(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.orgService.DeleteBatch(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "Batch deleted successfully", nil)
}

// ListBatches lists batches
// @Summary List batches
// @Tags organization
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /batches [get]
func (h *OrgHandler) ListBatches(c *gin.Context) {
	limit, offset := h.parsePagination(c)
	batches, total, err := h.orgService.ListBatches(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondList(c, batches, total, limit, offset)
}

// Courses

// CreateCourse creates a course
// @Summary Create course
// @Tags organization
// @Accept json
// @Produce json
// @Success 201 {object} models.Course
// @Router /courses [post]
func (h *OrgHandler) CreateCourse(c *gin.Context) {
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	created, err := h.orgService.CreateCourse(c.Request.Context(), &course)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, "", created)
}

// GetCourse retrieves a course
// @Summary Get course
// @Tags organization
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Router /courses/{id} [get]
func (h *OrgHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	course, err := h.orgService.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "", course)
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags organization
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Router /courses/{id} [put]
func (h *OrgHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	updated, err := h.orgService.UpdateCourse(c.Request.Context(), id, &course)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "", updated)
}

// DeleteCourse removes a course
// @Summary Delete course
// @Tags organization
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Router /courses/{id} [delete]
func (h *OrgHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.orgService.DeleteCourse(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "Course deleted successfully", nil)
}

// ListCourses lists courses
// @Summary List courses
// @Tags organization
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /courses [get]
func (h *OrgHandler) ListCourses(c *gin.Context) {
	limit, offset := h.parsePagination(c)
	courses, total, err := h.orgService.ListCourses(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondList(c, courses, total, limit, offset)
}

// Subjects

// CreateSubject creates a subject
// @Summary Create subject
// @Tags organization
// @Accept json
// @Produce json
// @Success 201 {object} models.Subject
// @Router /subjects [post]
func (h *OrgHandler) CreateSubject(c *gin.Context) {
	var subject models.Subject
	if err := c.ShouldBindJSON(&subject); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	created, err := h.orgService.CreateSubject(c.Request.Context(), &subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, "", created)
}

// GetSubject retrieves a subject
// @Summary Get subject
// @Tags organization
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} models.Subject
// @Router /subjects/{id} [get]
func (h *OrgHandler) GetSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	subject, err := h.orgService.GetSubject(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "", subject)
}

// UpdateSubject updates a subject
// @Summary Update subject
// @Tags organization
// @Accept json
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} models.Subject
// @Router /subjects/{id} [put]
func (h *OrgHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var subject models.Subject
	if err := c.ShouldBindJSON(&subject); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	updated, err := h.orgService.UpdateSubject(c.Request.Context(), id, &subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "", updated)
}

// DeleteSubject removes a subject
// @Summary Delete subject
// @Tags organization
// @Param id path uint true "Subject ID"
// @Success 200 {object} SuccessResponse
// @Router /subjects/{id} [delete]
func (h *OrgHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.orgService.DeleteSubject(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "Subject deleted successfully", nil)
}

// ListSubjects lists subjects
// @Summary List subjects
// @Tags organization
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /subjects [get]
func (h *OrgHandler) ListSubjects(c *gin.Context) {
	limit, offset := h.parsePagination(c)
	subjects, total, err := h.orgService.ListSubjects(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondList(c, subjects, total, limit, offset)
}
