package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/response"
)

// CohortHandler wires HTTP endpoints to the cohort service.
type CohortHandler struct {
	service *service.CohortService
}

// NewCohortHandler creates a new handler.
func NewCohortHandler(svc *service.CohortService) *CohortHandler {
	return &CohortHandler{service: svc}
}

// List godoc
// @Summary List cohorts
// @Tags Cohorts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cohorts [get]
func (h *CohortHandler) List(c *gin.Context) {
	cohorts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohorts, nil)
}

// Get godoc
// @Summary Get cohort by id
// @Tags Cohorts
// @Produce json
// @Param id path string true "Cohort id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohorts/{id} [get]
func (h *CohortHandler) Get(c *gin.Context) {
	cohort, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohort, nil)
}

// Create godoc
// @Summary Create cohort
// @Tags Cohorts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCohortRequest true "Cohort payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cohorts [post]
func (h *CohortHandler) Create(c *gin.Context) {
	var req models.CreateCohortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cohort payload"))
		return
	}

	cohort, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cohort)
}

// Update godoc
// @Summary Update cohort
// @Tags Cohorts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cohort id"
// @Param payload body models.UpdateCohortRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohorts/{id} [put]
func (h *CohortHandler) Update(c *gin.Context) {
	var req models.UpdateCohortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cohort payload"))
		return
	}

	cohort, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cohort, nil)
}

// Delete godoc
// @Summary Delete cohort
// @Tags Cohorts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cohort id"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cohorts/{id} [delete]
func (h *CohortHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
