package rsvp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sharath018/invitation-backend/internal/invitation"
	"github.com/sharath018/invitation-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// bindInput accepts a form post or a JSON object. JSON numbers and strings
// are both taken as typed.
func bindInput(c *gin.Context) (Input, error) {
	var in Input
	if !strings.HasPrefix(c.ContentType(), "application/json") {
		err := c.ShouldBind(&in)
		return in, err
	}

	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		return in, err
	}
	str := func(key string) string {
		switch v := raw[key].(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			return fmt.Sprint(v)
		}
	}
	in.GuestName = str("guest_name")
	in.IsAttending = str("is_attending")
	in.GuestCount = str("guest_count")
	in.Notes = str("notes")
	return in, nil
}

// SubmitRSVP godoc
// @Summary Submit a guest response
// @Tags Public
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 201 {object} Outcome
// @Failure 404 {object} map[string]string
// @Failure 422 {object} Outcome
// @Failure 500 {object} Outcome
// @Router /public/invitations/{id}/rsvps [post]
func (h *Handler) SubmitRSVP(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	in, err := bindInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	out, err := h.Service.Submit(c.Request.Context(), id, in, middleware.GetIPFromContext(c))
	switch {
	case errors.Is(err, invitation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
	case err != nil && out != nil:
		c.JSON(http.StatusInternalServerError, out)
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStoreFailed})
	case out.State == StateRejected:
		c.JSON(http.StatusUnprocessableEntity, out)
	default:
		c.JSON(http.StatusCreated, out)
	}
}

func (h *Handler) guestList(c *gin.Context) (*GuestList, bool) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "redirect": middleware.LoginPath})
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return nil, false
	}

	list, err := h.Service.GuestList(c.Request.Context(), id, ac.UserID)
	if errors.Is(err, invitation.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch guest list"})
		return nil, false
	}
	return list, true
}

// GetGuestList godoc
// @Summary Responses to an owned invitation
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} GuestList
// @Failure 404 {object} map[string]string
// @Router /invitations/{id}/guests [get]
func (h *Handler) GetGuestList(c *gin.Context) {
	list, ok := h.guestList(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, list)
}

// ExportGuestList godoc
// @Summary Download the guest list
// @Tags Invitations
// @Produce application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param format query string false "xlsx (default) or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /invitations/{id}/guests/export [get]
func (h *Handler) ExportGuestList(c *gin.Context) {
	list, ok := h.guestList(c)
	if !ok {
		return
	}

	data, mimeType, filename, err := Export(c.DefaultQuery("format", FormatExcel), list)
	if errors.Is(err, ErrUnsupportedFormat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or pdf"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export guest list"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mimeType, data)
}
