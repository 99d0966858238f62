package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to the grade service.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// List godoc
// @Summary List grades
// @Description Students see only their own published grades
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param grade_status query string false "Filter by status"
// @Param student_id query string false "Filter by student"
// @Param offering_id query string false "Filter by offering"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		GradeStatus: c.Query("grade_status"),
		StudentID:   c.Query("student_id"),
		OfferingID:  c.Query("offering_id"),
	}

	grades, err := h.service.List(c.Request.Context(), filter, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Get godoc
// @Summary Get grade by id
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	grade, err := h.service.Get(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Create godoc
// @Summary Create draft grade
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req models.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	grade, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade scores
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Param payload body models.UpdateGradeRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req models.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	grade, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Publish godoc
// @Summary Publish grade
// @Description One-way transition from draft to published
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id}/publish [post]
func (h *GradeHandler) Publish(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	grade, err := h.service.Publish(c.Request.Context(), c.Param("id"), actor.ID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
