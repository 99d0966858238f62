package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/response"
)

// OfferingHandler wires HTTP endpoints to the offering service.
type OfferingHandler struct {
	service *service.OfferingService
}

// NewOfferingHandler creates a new handler.
func NewOfferingHandler(svc *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{service: svc}
}

// List godoc
// @Summary List course offerings
// @Tags Offerings
// @Produce json
// @Param status query string false "Filter by status"
// @Param facilitator_id query string false "Filter by facilitator"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /course-offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	filter := models.OfferingFilter{
		Status:        c.Query("status"),
		FacilitatorID: c.Query("facilitator_id"),
		Page:          queryInt(c, "page"),
		PageSize:      queryInt(c, "page_size"),
	}

	offerings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, pagination)
}

// Get godoc
// @Summary Get course offering by id
// @Tags Offerings
// @Produce json
// @Param id path string true "Offering id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course-offerings/{id} [get]
func (h *OfferingHandler) Get(c *gin.Context) {
	offering, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// Create godoc
// @Summary Create course offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /course-offerings [post]
func (h *OfferingHandler) Create(c *gin.Context) {
	var req models.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offering payload"))
		return
	}

	offering, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

// Update godoc
// @Summary Update course offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offering id"
// @Param payload body models.UpdateOfferingRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course-offerings/{id} [put]
func (h *OfferingHandler) Update(c *gin.Context) {
	var req models.UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offering payload"))
		return
	}

	offering, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// Delete godoc
// @Summary Delete course offering
// @Tags Offerings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offering id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /course-offerings/{id} [delete]
func (h *OfferingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
