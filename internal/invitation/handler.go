package invitation

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sharath018/invitation-backend/internal/formengine"
	"github.com/sharath018/invitation-backend/internal/storage"
	"github.com/sharath018/invitation-backend/middleware"
)

// DashboardPath is where the front-end goes after a successful save.
const DashboardPath = "/dashboard"

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func getAccessContextFromContext(c *gin.Context) (middleware.AccessContext, bool) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "redirect": middleware.LoginPath})
	}
	return ac, ok
}

func parseInvitationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseTemplateID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return 0, false
	}
	return uint(id), true
}

// readEdits collects text values and files from a multipart or urlencoded body.
func readEdits(c *gin.Context) (Edits, error) {
	edits := Edits{Values: map[string]string{}, Files: map[string]*formengine.PendingFile{}}

	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := c.Request.ParseForm(); err != nil {
			return edits, err
		}
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				edits.Values[k] = v[0]
			}
		}
		return edits, nil
	}
	if err != nil {
		return edits, err
	}

	for k, v := range form.Value {
		if len(v) > 0 {
			edits.Values[k] = v[0]
		}
	}
	for k, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		edits.Files[k] = &formengine.PendingFile{
			Filename:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		}
	}
	return edits, nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *formengine.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
	case errors.Is(err, ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
	case errors.Is(err, storage.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed. Please try again."})
	default:
		h.Service.Log.Error().Err(err).Str("path", c.FullPath()).Msg("❌ invitation request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save invitation"})
	}
}

func renderForm(c *gin.Context, form *formengine.Form, extra gin.H) {
	if c.Query("format") == "html" {
		var buf bytes.Buffer
		if err := form.RenderHTML(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render form"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
		return
	}
	extra["inputs"] = form.Inputs()
	c.JSON(http.StatusOK, extra)
}

// GetTemplateForm godoc
// @Summary Empty form for a new invitation
// @Description Ordered inputs of a template; add format=html for a rendered form
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param format query string false "html to render the form"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /templates/{id}/form [get]
func (h *Handler) GetTemplateForm(c *gin.Context) {
	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}
	tpl, form, err := h.Service.NewForm(c.Request.Context(), templateID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	renderForm(c, form, gin.H{"template": tpl})
}

// CreateInvitation godoc
// @Summary Create an invitation from a template
// @Tags Invitations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Router /templates/{id}/invitations [post]
func (h *Handler) CreateInvitation(c *gin.Context) {
	ac, ok := getAccessContextFromContext(c)
	if !ok {
		return
	}
	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}
	edits, err := readEdits(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
		return
	}

	inv, err := h.Service.Create(c.Request.Context(), Actor{UserID: ac.UserID, IP: middleware.GetIPFromContext(c)}, templateID, edits)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invitation created successfully!",
		"invitation": inv,
		"share_url":  h.Service.ShareURL(inv.ID),
		"redirect":   DashboardPath,
	})
}

// ListInvitations godoc
// @Summary The caller's invitations, newest first
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ListItem
// @Router /invitations [get]
func (h *Handler) ListInvitations(c *gin.Context) {
	ac, ok := getAccessContextFromContext(c)
	if !ok {
		return
	}
	items, err := h.Service.List(c.Request.Context(), ac.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetEditForm godoc
// @Summary Prefilled form of an owned invitation
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param format query string false "html to render the form"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /invitations/{id}/form [get]
func (h *Handler) GetEditForm(c *gin.Context) {
	ac, ok := getAccessContextFromContext(c)
	if !ok {
		return
	}
	id, ok := parseInvitationID(c)
	if !ok {
		return
	}
	inv, tpl, form, err := h.Service.EditForm(c.Request.Context(), id, ac.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	renderForm(c, form, gin.H{"invitation": inv, "template": tpl})
}

// UpdateInvitation godoc
// @Summary Save edits to an owned invitation
// @Tags Invitations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /invitations/{id} [put]
func (h *Handler) UpdateInvitation(c *gin.Context) {
	ac, ok := getAccessContextFromContext(c)
	if !ok {
		return
	}
	id, ok := parseInvitationID(c)
	if !ok {
		return
	}
	edits, err := readEdits(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
		return
	}

	inv, err := h.Service.Update(c.Request.Context(), Actor{UserID: ac.UserID, IP: middleware.GetIPFromContext(c)}, id, edits)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Invitation updated successfully!",
		"invitation": inv,
		"redirect":   DashboardPath,
	})
}

// DeleteInvitation godoc
// @Summary Delete an owned invitation
// @Tags Invitations
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invitations/{id} [delete]
func (h *Handler) DeleteInvitation(c *gin.Context) {
	ac, ok := getAccessContextFromContext(c)
	if !ok {
		return
	}
	id, ok := parseInvitationID(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), Actor{UserID: ac.UserID, IP: middleware.GetIPFromContext(c)}, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation deleted"})
}

// GetQRCode godoc
// @Summary QR code of an owned invitation's share link
// @Tags Invitations
// @Produce png
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /invitations/{id}/qr [get]
func (h *Handler) GetQRCode(c *gin.Context) {
	ac, ok := getAccessContextFromContext(c)
	if !ok {
		return
	}
	id, ok := parseInvitationID(c)
	if !ok {
		return
	}
	if _, err := h.Service.GetOwned(c.Request.Context(), id, ac.UserID); err != nil {
		h.respondError(c, err)
		return
	}

	png, err := QRCodePNG(h.Service.ShareURL(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
