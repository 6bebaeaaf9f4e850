package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type TestHandler struct {
	BaseHandler
	testService    services.TestService
	scoringService services.ScoringService
	validator      *validator.Validator
}

func NewTestHandler(
	testService services.TestService,
	scoringService services.ScoringService,
	validator *validator.Validator,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler:    NewBaseHandler(logger),
		testService:    testService,
		scoringService: scoringService,
		validator:      validator,
	}
}

// CreateTest creates a new test
// @Summary Create test
// @Description Creates a new test in DRAFT status
// @Tags tests
// @Accept json
// @Produce json
// @Param test body services.CreateTestRequest true "Test data"
// @Success 201 {object} models.Test
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	h.LogRequest(c, "Creating test")

	var req services.CreateTestRequest
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

	test, err := h.testService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "", test)
}

// GetTest retrieves a test by ID
// @Summary Get test
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	test, err := h.testService.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", test)
}

// ListTests lists tests visible to the caller
// @Summary List tests
// @Tags tests
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.TestListResponse
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := h.parseTestFilters(c)
	resp, err := h.testService.List(c.Request.Context(), filters, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Tests, resp.Total, resp.Limit, resp.Offset)
}

func (h *TestHandler) parseTestFilters(c *gin.Context) repositories.TestFilters {
	filters := repositories.TestFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if v := c.Query("status"); v != "" {
		status := models.TestStatus(v)
		filters.Status = &status
	}
	if v := c.Query("type"); v != "" {
		typ := models.TestType(v)
		filters.Type = &typ
	}
	if v, err := strconv.ParseUint(c.Query("course_id"), 10, 32); err == nil {
		id := uint(v)
		filters.CourseID = &id
	}
	if v, err := strconv.ParseUint(c.Query("subject_id"), 10, 32); err == nil {
		id := uint(v)
		filters.SubjectID = &id
	}
	if v, err := strconv.ParseUint(c.Query("batch_id"), 10, 32); err == nil {
		id := uint(v)
		filters.BatchID = &id
	}
	return filters
}

// UpdateTest updates a draft test
// @Summary Update test
// @Tags tests
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param test body services.UpdateTestRequest true "Fields to update"
// @Success 200 {object} models.Test
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [put]
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating test", "test_id", id)

	var req services.UpdateTestRequest
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

	test, err := h.testService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", test)
}

// DeleteTest deletes a test without attempts
// @Summary Delete test
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /tests/{id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Test deleted successfully", nil)
}

// lifecycleAction adapts the shared shape of the status transition endpoints.
func (h *TestHandler) lifecycleAction(c *gin.Context, msg string, fn func(ctx *gin.Context, id, userID uint) (*models.Test, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, msg, "test_id", id)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	test, err := fn(c, id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", test)
}

// PublishTest publishes a draft test
// @Summary Publish test
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Router /tests/{id}/publish [post]
func (h *TestHandler) PublishTest(c *gin.Context) {
	h.lifecycleAction(c, "Publishing test", func(ctx *gin.Context, id, userID uint) (*models.Test, error) {
		return h.testService.Publish(ctx.Request.Context(), id, userID)
	})
}

// StartTest force-starts a scheduled test
// @Summary Start test
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Router /tests/{id}/start [post]
func (h *TestHandler) StartTest(c *gin.Context) {
	h.lifecycleAction(c, "Starting test", func(ctx *gin.Context, id, userID uint) (*models.Test, error) {
		return h.testService.Start(ctx.Request.Context(), id, userID)
	})
}

// CompleteTest ends a running test
// @Summary Complete test
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Router /tests/{id}/complete [post]
func (h *TestHandler) CompleteTest(c *gin.Context) {
	h.lifecycleAction(c, "Completing test", func(ctx *gin.Context, id, userID uint) (*models.Test, error) {
		return h.testService.Complete(ctx.Request.Context(), id, userID)
	})
}

// ArchiveTest archives a completed test
// @Summary Archive test
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Router /tests/{id}/archive [post]
func (h *TestHandler) ArchiveTest(c *gin.Context) {
	h.lifecycleAction(c, "Archiving test", func(ctx *gin.Context, id, userID uint) (*models.Test, error) {
		return h.testService.Archive(ctx.Request.Context(), id, userID)
	})
}

// MoveTestToDraft returns an unstarted test to DRAFT
// @Summary Move test to draft
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Router /tests/{id}/draft [post]
func (h *TestHandler) MoveTestToDraft(c *gin.Context) {
	h.lifecycleAction(c, "Moving test to draft", func(ctx *gin.Context, id, userID uint) (*models.Test, error) {
		return h.testService.MoveToDraft(ctx.Request.Context(), id, userID)
	})
}

// PublishTestResults releases results to students
// @Summary Publish test results
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} models.Test
// @Router /tests/{id}/results/publish [post]
func (h *TestHandler) PublishTestResults(c *gin.Context) {
	h.lifecycleAction(c, "Publishing test results", func(ctx *gin.Context, id, userID uint) (*models.Test, error) {
		return h.testService.PublishResults(ctx.Request.Context(), id, userID)
	})
}

// AddQuestionToTest attaches an existing question to a draft test
// @Summary Add question to test
// @Tags tests
// @Accept json
// @Param id path uint true "Test ID"
// @Param question body services.AddQuestionRequest true "Question link data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /tests/{id}/questions [post]
func (h *TestHandler) AddQuestionToTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Adding question to test", "test_id", id)

	var req services.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.testService.AddQuestion(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Question added successfully", nil)
}

// AddQuestionsToTest attaches questions to a draft test in one call
// @Summary Add questions to test
// @Tags tests
// @Accept json
// @Param id path uint true "Test ID"
// @Param questions body []services.AddQuestionRequest true "Question link data"
// @Success 200 {object} SuccessResponse
// @Router /tests/{id}/questions/batch [post]
func (h *TestHandler) AddQuestionsToTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Adding questions to test", "test_id", id)

	var reqs []services.AddQuestionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
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

	if err := h.testService.AddQuestions(c.Request.Context(), id, reqs, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Questions added successfully", nil)
}

// RemoveQuestionFromTest detaches a question from a draft test
// @Summary Remove question from test
// @Tags tests
// @Param id path uint true "Test ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Router /tests/{id}/questions/{question_id} [delete]
func (h *TestHandler) RemoveQuestionFromTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	h.LogRequest(c, "Removing question from test", "test_id", id, "question_id", questionID)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.testService.RemoveQuestion(c.Request.Context(), id, questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Question removed successfully", nil)
}

// ReorderTestQuestions rewrites the question order of a draft test
// @Summary Reorder test questions
// @Tags tests
// @Accept json
// @Param id path uint true "Test ID"
// @Param orders body []repositories.QuestionOrder true "New question order"
// @Success 200 {object} SuccessResponse
// @Router /tests/{id}/questions/reorder [put]
func (h *TestHandler) ReorderTestQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Reordering test questions", "test_id", id)

	var orders []repositories.QuestionOrder
	if err := c.ShouldBindJSON(&orders); err != nil {
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

	if err := h.testService.ReorderQuestions(c.Request.Context(), id, orders, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Questions reordered successfully", nil)
}

// UpdateTestQuestionMarks overrides the marks of one question within a test
// @Summary Update test question marks
// @Tags tests
// @Accept json
// @Param id path uint true "Test ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Router /tests/{id}/questions/{question_id}/marks [put]
func (h *TestHandler) UpdateTestQuestionMarks(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req struct {
		Marks *float64 `json:"marks" validate:"omitempty,min=0"`
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

	if err := h.testService.UpdateQuestionMarks(c.Request.Context(), id, questionID, req.Marks, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Question marks updated successfully", nil)
}

// GetTestQuestions lists a test's questions with answers, for staff
// @Summary Get test questions
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {array} models.TestQuestion
// @Router /tests/{id}/questions [get]
func (h *TestHandler) GetTestQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	questions, err := h.testService.GetQuestions(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", questions)
}

// GetTestStats returns aggregate attempt statistics for a test
// @Summary Get test stats
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} repositories.TestStats
// @Router /tests/{id}/stats [get]
func (h *TestHandler) GetTestStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.testService.GetStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", stats)
}

// GetLeaderboard returns the ranked standings for a test
// @Summary Get test leaderboard
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {array} repositories.LeaderboardEntry
// @Failure 400 {object} ErrorResponse
// @Router /tests/{id}/leaderboard [get]
func (h *TestHandler) GetLeaderboard(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.scoringService.GetLeaderboard(c.Request.Context(), id, limit, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", entries)
}
