package template

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

func actorFrom(c *gin.Context) Actor {
	ac, _ := middleware.GetAccessContext(c)
	return Actor{UserID: ac.UserID, IP: middleware.GetIPFromContext(c)}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return 0, false
	}
	return uint(id), true
}

// ListTemplates godoc
// @Summary List templates, newest first
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Template
// @Router /templates [get]
func (h *Handler) ListTemplates(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetTemplate godoc
// @Summary Get a template
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} Template
// @Failure 404 {object} map[string]string
// @Router /templates/{id} [get]
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// ===========================
// 🔐 Admin
// ===========================

// CreateTemplate godoc
// @Summary Create a template (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TemplateRequest true "Template"
// @Success 201 {object} Template
// @Failure 400 {object} map[string]string
// @Router /admin/templates [post]
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.Service.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Template created", "template": t, "redirect": "/admin"})
}

// UpdateTemplate godoc
// @Summary Update a template (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param body body TemplateRequest true "Template"
// @Success 200 {object} Template
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/templates/{id} [put]
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.Service.Update(c.Request.Context(), id, req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template updated", "template": t, "redirect": "/admin"})
}

// DeleteTemplate godoc
// @Summary Delete a template (admin)
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/templates/{id} [delete]
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMalformedSchema):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "malformed_schema"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Template operation failed"})
	}
}
