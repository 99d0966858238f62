package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/response"
)

// NotificationHandler wires HTTP endpoints to the notification service.
type NotificationHandler struct {
	service *service.NotificationService
	metrics *service.MetricsService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc *service.NotificationService, metrics *service.MetricsService) *NotificationHandler {
	return &NotificationHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List own notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	notifications, err := h.service.ListOwn(c.Request.Context(), user.ID, queryInt(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	notification, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notification, nil)
}

// Enqueue godoc
// @Summary Enqueue a notification job
// @Description Accepts a delivery job and returns its id; delivery is asynchronous
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body object true "Job payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Enqueue(c *gin.Context) {
	var payload struct {
		Type   string                 `json:"type" binding:"required"`
		UserID string                 `json:"user_id" binding:"required"`
		Data   map[string]interface{} `json:"data"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notification payload"))
		return
	}

	jobID, err := h.service.Enqueue(c.Request.Context(), payload.Type, payload.UserID, payload.Data)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordJobEnqueued(payload.Type)

	response.JSON(c, http.StatusAccepted, models.EnqueueResponse{JobID: jobID}, nil)
}
