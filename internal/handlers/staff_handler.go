package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
)

type StaffHandler struct {
	BaseHandler
	staffService services.StaffService
}

func NewStaffHandler(staffService services.StaffService, logger utils.Logger) *StaffHandler {
	return &StaffHandler{
		BaseHandler:  NewBaseHandler(logger),
		staffService: staffService,
	}
}

// CreateStaff creates a teacher or admin account
// @Summary Create staff
// @Tags staff
// @Accept json
// @Produce json
// @Param staff body services.CreateStaffRequest true "Staff data"
// @Success 201 {object} models.Staff
// @Failure 400 {object} ErrorResponse
// @Router /staff [post]
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	h.LogRequest(c, "Creating staff")

	var req services.CreateStaffRequest
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

	staff, err := h.staffService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "", staff)
}

// GetStaff retrieves a staff record
// @Summary Get staff
// @Tags staff
// @Produce json
// @Param id path uint true "Staff ID"
// @Success 200 {object} models.Staff
// @Failure 404 {object} ErrorResponse
// @Router /staff/{id} [get]
func (h *StaffHandler) GetStaff(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	staff, err := h.staffService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", staff)
}

// UpdateStaff updates a staff record and account
// @Summary Update staff
// @Tags staff
// @Accept json
// @Produce json
// @Param id path uint true "Staff ID"
// @Success 200 {object} models.Staff
// @Router /staff/{id} [put]
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating staff", "staff_id", id)

	var req services.UpdateStaffRequest
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

	staff, err := h.staffService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", staff)
}

// DeleteStaff removes a staff account
// @Summary Delete staff
// @Tags staff
// @Param id path uint true "Staff ID"
// @Success 200 {object} SuccessResponse
// @Router /staff/{id} [delete]
func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting staff", "staff_id", id)

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.staffService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Staff deleted successfully", nil)
}

// ListStaff lists staff accounts
// @Summary List staff
// @Tags staff
// @Produce json
// @Success 200 {object} services.StaffListResponse
// @Router /staff [get]
func (h *StaffHandler) ListStaff(c *gin.Context) {
	limit, offset := h.parsePagination(c)

	resp, err := h.staffService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondList(c, resp.Staff, resp.Total, resp.Limit, resp.Offset)
}
