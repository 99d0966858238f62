package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/response"
)

// ModuleHandler wires HTTP endpoints to the module service.
type ModuleHandler struct {
	service *service.ModuleService
}

// NewModuleHandler creates a new handler.
func NewModuleHandler(svc *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{service: svc}
}

// List godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Validation("active", "must be true or false"))
			return
		}
		active = &v
	}

	modules, err := h.service.List(c.Request.Context(), active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// Get godoc
// @Summary Get module by id
// @Tags Modules
// @Produce json
// @Param id path string true "Module id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Create godoc
// @Summary Create module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req models.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}

	module, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// Update godoc
// @Summary Update module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module id"
// @Param payload body models.UpdateModuleRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [put]
func (h *ModuleHandler) Update(c *gin.Context) {
	var req models.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}

	module, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Delete godoc
// @Summary Delete module
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module id"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
