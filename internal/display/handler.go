package display

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/invitation"
)

type Handler struct {
	Service *Service
	Log     zerolog.Logger
}

func NewHandler(s *Service, log zerolog.Logger) *Handler {
	return &Handler{Service: s, Log: log.With().Str("component", "display").Logger()}
}

// GetPublicInvitation godoc
// @Summary Public view of an invitation
// @Description No authentication. Unknown templates return supported=false.
// @Tags Public
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} Page
// @Failure 404 {object} map[string]string
// @Router /public/invitations/{id} [get]
func (h *Handler) GetPublicInvitation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}

	page, err := h.Service.Page(c.Request.Context(), id)
	if errors.Is(err, invitation.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("invitation_id", id.String()).Msg("❌ public page failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invitation"})
		return
	}
	c.JSON(http.StatusOK, page)
}
