package rsvp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/auditlog"
	"github.com/sharath018/invitation-backend/internal/invitation"
	"github.com/sharath018/invitation-backend/internal/notification"
	"github.com/sharath018/invitation-backend/internal/template"
)

// Invitations is the part of the invitation store RSVPs depend on.
type Invitations interface {
	GetByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error)
	GetOwned(ctx context.Context, id uuid.UUID, ownerID uint) (*invitation.Invitation, error)
}

type TemplateLookup interface {
	Get(ctx context.Context, id uint) (*template.Template, error)
}

type Service struct {
	Repo        *Repository
	Invitations Invitations
	Templates   TemplateLookup
	AuditSvc    auditlog.Service
	Events      notification.Publisher
	Log         zerolog.Logger
}

func NewService(repo *Repository, invitations Invitations, templates TemplateLookup, auditSvc auditlog.Service, events notification.Publisher, log zerolog.Logger) *Service {
	return &Service{
		Repo:        repo,
		Invitations: invitations,
		Templates:   templates,
		AuditSvc:    auditSvc,
		Events:      events,
		Log:         log.With().Str("component", "rsvp").Logger(),
	}
}

// Submit records a guest response for an existing invitation.
func (s *Service) Submit(ctx context.Context, invitationID uuid.UUID, in Input, ip string) (*Outcome, error) {
	if _, err := s.Invitations.GetByID(ctx, invitationID); err != nil {
		return nil, err
	}

	out, err := NewCollector(invitationID, s.Repo).Submit(ctx, in)
	if err != nil {
		s.Log.Error().Err(err).Str("invitation_id", invitationID.String()).Msg("❌ RSVP not saved")
		s.logAudit(ctx, invitationID.String(), "RSVP_FAILED", map[string]interface{}{"error": err.Error()}, ip, auditlog.StatusFailure)
		return out, err
	}
	if out.State != StateRecorded {
		return out, nil
	}

	details := map[string]interface{}{
		"guest_name":   out.RSVP.GuestName,
		"is_attending": out.RSVP.IsAttending,
		"guest_count":  out.RSVP.GuestCount,
	}
	s.logAudit(ctx, invitationID.String(), "RSVP_RECORDED", details, ip, auditlog.StatusSuccess)
	if s.Events != nil {
		err := s.Events.Publish(ctx, notification.Event{
			Type:         notification.EventRSVPRecorded,
			InvitationID: invitationID.String(),
			Data:         details,
		})
		if err != nil {
			s.Log.Warn().Err(err).Msg("⚠️ event publish failed")
		}
	}
	return out, nil
}

// GuestList returns the responses of an owned invitation with its summary.
func (s *Service) GuestList(ctx context.Context, invitationID uuid.UUID, ownerID uint) (*GuestList, error) {
	inv, err := s.Invitations.GetOwned(ctx, invitationID, ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.Repo.ListByInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []RSVP{}
	}

	list := &GuestList{InvitationID: invitationID, Summary: Summarize(rows), Guests: rows}
	if s.Templates != nil {
		tpl, err := s.Templates.Get(ctx, inv.TemplateID)
		switch {
		case err == nil:
			list.TemplateName = tpl.Name
		case !errors.Is(err, template.ErrNotFound):
			return nil, err
		}
	}
	return list, nil
}

func (s *Service) logAudit(ctx context.Context, resourceID, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	if err := s.AuditSvc.LogAction(ctx, nil, auditlog.ResourceRSVP, resourceID, action, details, ip, status); err != nil {
		s.Log.Warn().Err(err).Str("action", action).Msg("⚠️ audit log write failed")
	}
}
