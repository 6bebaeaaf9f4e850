package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
	scoringService services.ScoringService
}

func NewStudentHandler(studentService services.StudentService, scoringService services.ScoringService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		scoringService: scoringService,
	}
}

// CreateStudent enrolls a new student account
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Param student body services.CreateStudentRequest true "Student data"
// @Success 201 {object} models.StudentProfile
// @Failure 400 {object} ErrorResponse
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	h.LogRequest(c, "Creating student")

	var req services.CreateStudentRequest
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

	student, err := h.studentService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "", student)
}

// GetStudent retrieves a student profile
// @Summary Get student
// @Tags students
// @Produce json
// @Param id path uint true "Student profile ID"
// @Success 200 {object} models.StudentProfile
// @Failure 404 {object} ErrorResponse
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", student)
}

// UpdateStudent updates a student profile and account
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Param id path uint true "Student profile ID"
// @Success 200 {object} models.StudentProfile
// @Router /students/{id} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating student", "student_id", id)

	var req services.UpdateStudentRequest
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

	student, err := h.studentService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", student)
}

// DeleteStudent removes a student account and profile
// @Summary Delete student
// @Tags students
// @Param id path uint true "Student profile ID"
// @Success 200 {object} SuccessResponse
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting student", "student_id", id)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Student deleted successfully", nil)
}

// ListStudents lists student accounts
// @Summary List students
// @Tags students
// @Produce json
// @Param batch_id query uint false "Filter by batch"
// @Param query query string false "Search by name or email"
// @Success 200 {object} services.UserListResponse
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	filters := repositories.UserFilters{
		Query:           c.Query("query"),
		IncludeDisabled: c.Query("include_disabled") == "true",
	}
	filters.Limit, filters.Offset = h.parsePagination(c)
	if v, err := strconv.ParseUint(c.Query("batch_id"), 10, 32); err == nil {
		id := uint(v)
		filters.BatchID = &id
	}

	resp, err := h.studentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Users, resp.Total, resp.Limit, resp.Offset)
}

// GetMyProfile returns the caller's student profile
// @Summary Get my student profile
// @Tags students
// @Produce json
// @Success 200 {object} models.StudentProfile
// @Router /students/me [get]
func (h *StudentHandler) GetMyProfile(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	student, err := h.studentService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", student)
}

// GetMySummary returns the caller's aggregate performance stats
// @Summary Get my performance summary
// @Tags students
// @Produce json
// @Success 200 {object} repositories.StudentTestSummary
// @Router /students/me/summary [get]
func (h *StudentHandler) GetMySummary(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	summary, err := h.studentService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", summary)
}

// GetStudentSummary returns a student's aggregate stats, for staff
// @Summary Get student performance summary
// @Tags students
// @Produce json
// @Param id path uint true "Student user ID"
// @Success 200 {object} repositories.StudentTestSummary
// @Router /students/{id}/summary [get]
func (h *StudentHandler) GetStudentSummary(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	summary, err := h.scoringService.GetStudentSummary(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", summary)
}
