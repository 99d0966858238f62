package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/response"
)

// ActivityLogHandler wires HTTP endpoints to the activity log service.
type ActivityLogHandler struct {
	service *service.ActivityLogService
}

// NewActivityLogHandler creates a new handler.
func NewActivityLogHandler(svc *service.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{service: svc}
}

// List godoc
// @Summary List activity logs
// @Tags ActivityLogs
// @Produce json
// @Security BearerAuth
// @Param week_number query int false "Filter by week"
// @Param offering_id query string false "Filter by offering"
// @Success 200 {object} response.Envelope
// @Router /activity-logs [get]
func (h *ActivityLogHandler) List(c *gin.Context) {
	filter := models.ActivityLogFilter{OfferingID: c.Query("offering_id")}
	if raw := c.Query("week_number"); raw != "" {
		week := queryInt(c, "week_number")
		filter.WeekNumber = &week
	}

	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Get godoc
// @Summary Get activity log by id
// @Tags ActivityLogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity log id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activity-logs/{id} [get]
func (h *ActivityLogHandler) Get(c *gin.Context) {
	log, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Create godoc
// @Summary Submit weekly activity log
// @Tags ActivityLogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateActivityLogRequest true "Activity log payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activity-logs [post]
func (h *ActivityLogHandler) Create(c *gin.Context) {
	var req models.CreateActivityLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity log payload"))
		return
	}

	log, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, log)
}

// Update godoc
// @Summary Update activity log
// @Tags ActivityLogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity log id"
// @Param payload body models.UpdateActivityLogRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activity-logs/{id} [put]
func (h *ActivityLogHandler) Update(c *gin.Context) {
	var req models.UpdateActivityLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity log payload"))
		return
	}

	log, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Delete godoc
// @Summary Delete activity log
// @Tags ActivityLogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity log id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /activity-logs/{id} [delete]
func (h *ActivityLogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
