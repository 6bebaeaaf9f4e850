package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	validator      *validator.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		validator:      validator,
	}
}

// StartAttempt starts or resumes an attempt on a running test
// @Summary Start test attempt
// @Description Starts a new attempt, or resumes the caller's open attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Success 201 {object} services.AttemptStartResponse
// @Failure 400 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	h.LogRequest(c, "Starting test attempt")

	var req struct {
		TestID uint `json:"test_id" binding:"required"`
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

	resp, err := h.attemptService.Start(c.Request.Context(), req.TestID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Resumed {
		status = http.StatusOK
	}
	h.respond(c, status, "", resp)
}

// SubmitAnswer records one answer in an open attempt
// @Summary Submit answer
// @Tags attempts
// @Accept json
// @Param id path uint true "Attempt ID"
// @Param answer body services.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /attempts/{id}/answer [post]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	var req services.SubmitAnswerRequest
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

	if err := h.attemptService.SubmitAnswer(c.Request.Context(), attemptID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Answer submitted successfully", nil)
}

// AutoSaveAnswers bulk-saves answers from the client's periodic sync
// @Summary Auto-save answers
// @Tags attempts
// @Accept json
// @Param id path uint true "Attempt ID"
// @Param answers body services.AutoSaveRequest true "Answers to save"
// @Success 200 {object} SuccessResponse
// @Router /attempts/{id}/autosave [post]
func (h *AttemptHandler) AutoSaveAnswers(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	var req services.AutoSaveRequest
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

	if err := h.attemptService.AutoSave(c.Request.Context(), attemptID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Answers saved", nil)
}

// CompleteAttempt submits the attempt and finalizes its score
// @Summary Complete attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} models.TestAttempt
// @Failure 400 {object} ErrorResponse
// @Router /attempts/{id}/complete [post]
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	h.LogRequest(c, "Completing attempt", "attempt_id", attemptID)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.Complete(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", attempt)
}

// GetAttemptResult returns the scored attempt with the answer review
// @Summary Get attempt result
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/result [get]
func (h *AttemptHandler) GetAttemptResult(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), attemptID, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", result)
}

// GetTimeStatus reports how much attempt time remains
// @Summary Get attempt time status
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.TimeStatus
// @Router /attempts/{id}/time [get]
func (h *AttemptHandler) GetTimeStatus(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	status, err := h.attemptService.GetTimeStatus(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", status)
}

// ListMyAttempts lists the caller's own attempts
// @Summary List my attempts
// @Tags attempts
// @Produce json
// @Success 200 {object} services.AttemptListResponse
// @Router /attempts [get]
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.AttemptFilters
	filters.Limit, filters.Offset = h.parsePagination(c)

	resp, err := h.attemptService.ListByStudent(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Attempts, resp.Total, resp.Limit, resp.Offset)
}

// ListTestAttempts lists attempts on a test, for staff
// @Summary List attempts by test
// @Tags attempts
// @Produce json
// @Param test_id path uint true "Test ID"
// @Success 200 {object} services.AttemptListResponse
// @Router /attempts/test/{test_id} [get]
func (h *AttemptHandler) ListTestAttempts(c *gin.Context) {
	testID := h.parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.AttemptFilters
	filters.Limit, filters.Offset = h.parsePagination(c)

	resp, err := h.attemptService.ListByTest(c.Request.Context(), testID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Attempts, resp.Total, resp.Limit, resp.Offset)
}
