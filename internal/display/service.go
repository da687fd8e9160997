package display

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharath018/invitation-backend/internal/invitation"
)

type InvitationLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error)
}

// Page is everything a public invitation page needs to render.
type Page struct {
	InvitationID uuid.UUID         `json:"invitation_id"`
	TemplateID   uint              `json:"template_id"`
	Variant      Variant           `json:"variant,omitempty"`
	Supported    bool              `json:"supported"`
	Message      string            `json:"message,omitempty"`
	CustomData   map[string]string `json:"custom_data,omitempty"`
	RSVPPath     string            `json:"rsvp_path,omitempty"`
}

type Service struct {
	Invitations InvitationLookup
}

func NewService(invitations InvitationLookup) *Service {
	return &Service{Invitations: invitations}
}

// Page resolves the public view of an invitation. Unknown invitations return
// invitation.ErrNotFound.
func (s *Service) Page(ctx context.Context, id uuid.UUID) (*Page, error) {
	inv, err := s.Invitations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	page := &Page{InvitationID: inv.ID, TemplateID: inv.TemplateID}
	variant, ok := VariantFor(inv.TemplateID)
	if !ok {
		page.Message = MsgUnsupported
		return page, nil
	}

	values, err := inv.Values()
	if err != nil {
		return nil, fmt.Errorf("decode custom data: %w", err)
	}
	page.Variant = variant
	page.Supported = true
	page.CustomData = values
	page.RSVPPath = "/api/v1/public/invitations/" + inv.ID.String() + "/rsvps"
	return page, nil
}
