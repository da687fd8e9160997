package invitation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/auditlog"
	"github.com/sharath018/invitation-backend/internal/formengine"
	"github.com/sharath018/invitation-backend/internal/notification"
	"github.com/sharath018/invitation-backend/internal/storage"
	"github.com/sharath018/invitation-backend/internal/template"
)

var ErrTemplateNotFound = errors.New("template not found")

// TemplateSource resolves the current schema of a template.
type TemplateSource interface {
	GetWithStructure(ctx context.Context, id uint) (*template.Template, template.Structure, error)
}

type Uploader interface {
	Upload(ctx context.Context, scope storage.Scope, uploads map[string]formengine.PendingFile) (*storage.Result, error)
	Discard(ctx context.Context, res *storage.Result)
}

// Edits is what a client submits for one save: text values and chosen files,
// both keyed by field name.
type Edits struct {
	Values map[string]string
	Files  map[string]*formengine.PendingFile
}

type Service struct {
	Repo          *Repository
	Templates     TemplateSource
	Uploads       Uploader
	AuditSvc      auditlog.Service
	Events        notification.Publisher
	PublicBaseURL string
	Log           zerolog.Logger
}

func NewService(repo *Repository, templates TemplateSource, uploads Uploader, auditSvc auditlog.Service, events notification.Publisher, publicBaseURL string, log zerolog.Logger) *Service {
	return &Service{
		Repo:          repo,
		Templates:     templates,
		Uploads:       uploads,
		AuditSvc:      auditSvc,
		Events:        events,
		PublicBaseURL: publicBaseURL,
		Log:           log.With().Str("component", "invitation").Logger(),
	}
}

// ShareURL is the public page of an invitation.
func (s *Service) ShareURL(id uuid.UUID) string {
	return s.PublicBaseURL + "/invite/" + id.String()
}

func (s *Service) structure(ctx context.Context, templateID uint) (*template.Template, template.Structure, error) {
	tpl, st, err := s.Templates.GetWithStructure(ctx, templateID)
	if errors.Is(err, template.ErrNotFound) {
		return nil, template.Structure{}, fmt.Errorf("%w: %d", ErrTemplateNotFound, templateID)
	}
	return tpl, st, err
}

// ===========================
// 📝 Forms
// ===========================

// NewForm returns an empty create-mode form for a template.
func (s *Service) NewForm(ctx context.Context, templateID uint) (*template.Template, *formengine.Form, error) {
	tpl, st, err := s.structure(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	return tpl, formengine.New(st.Fields, nil), nil
}

// EditForm returns an owned invitation's form, prefilled with its data
// interpreted against the template's current schema.
func (s *Service) EditForm(ctx context.Context, id uuid.UUID, ownerID uint) (*Invitation, *template.Template, *formengine.Form, error) {
	inv, err := s.Repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, nil, nil, err
	}
	tpl, st, err := s.structure(ctx, inv.TemplateID)
	if err != nil {
		return nil, nil, nil, err
	}
	values, err := inv.Values()
	if err != nil {
		return nil, nil, nil, err
	}
	return inv, tpl, formengine.New(st.Fields, values), nil
}

// applyEdits feeds client edits into the form. Keys outside the schema are
// ignored; rejected file selections become field errors.
func applyEdits(form *formengine.Form, edits Edits) *formengine.ValidationError {
	verr := &formengine.ValidationError{}
	for name, value := range edits.Values {
		_ = form.SetValue(name, value)
	}
	for name, file := range edits.Files {
		err := form.Select(name, file)
		switch {
		case err == nil, errors.Is(err, formengine.ErrUnknownField):
		case errors.Is(err, formengine.ErrFileTooLarge):
			verr.Add(name, "File is too large! Maximum size is 5MB.")
		default:
			verr.Add(name, err.Error())
		}
	}
	return verr
}

func submit(form *formengine.Form, edits Edits) (*formengine.Submission, error) {
	verr := applyEdits(form, edits)
	sub, err := form.Submit()
	if err != nil {
		var submitErr *formengine.ValidationError
		if !errors.As(err, &submitErr) {
			return nil, err
		}
		for field, msgs := range submitErr.Fields {
			for _, m := range msgs {
				verr.Add(field, m)
			}
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	return sub, nil
}

// ===========================
// 🎯 Create Invitation
// ===========================

func (s *Service) Create(ctx context.Context, actor Actor, templateID uint, edits Edits) (*Invitation, error) {
	_, st, err := s.structure(ctx, templateID)
	if err != nil {
		return nil, err
	}

	sub, err := submit(formengine.New(st.Fields, nil), edits)
	if err != nil {
		return nil, err
	}

	res, err := s.Uploads.Upload(ctx, storage.Scope{OwnerID: actor.UserID}, sub.Uploads)
	if err != nil {
		s.logAudit(ctx, actor, "", "INVITATION_CREATE_FAILED", map[string]interface{}{"template_id": templateID, "error": err.Error()}, auditlog.StatusFailure)
		return nil, err
	}
	for field, url := range res.URLs {
		sub.Values[field] = url
	}

	data, err := EncodeValues(sub.Values)
	if err != nil {
		s.Uploads.Discard(context.WithoutCancel(ctx), res)
		return nil, err
	}
	inv := &Invitation{UserID: actor.UserID, TemplateID: templateID, CustomData: data}
	if err := s.Repo.Create(ctx, inv); err != nil {
		s.Uploads.Discard(context.WithoutCancel(ctx), res)
		s.logAudit(ctx, actor, "", "INVITATION_CREATE_FAILED", map[string]interface{}{"template_id": templateID, "error": err.Error()}, auditlog.StatusFailure)
		return nil, fmt.Errorf("save invitation: %w", err)
	}

	s.logAudit(ctx, actor, inv.ID.String(), "INVITATION_CREATED", map[string]interface{}{"template_id": templateID}, auditlog.StatusSuccess)
	s.publish(ctx, notification.EventInvitationCreated, inv.ID, actor.UserID, map[string]interface{}{"template_id": templateID})
	s.Log.Info().Str("invitation_id", inv.ID.String()).Uint("user_id", actor.UserID).Msg("✅ Invitation created")
	return inv, nil
}

// ===========================
// 🔄 Update Invitation
// ===========================

func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, edits Edits) (*Invitation, error) {
	inv, _, form, err := s.EditForm(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}

	sub, err := submit(form, edits)
	if err != nil {
		return nil, err
	}

	res, err := s.Uploads.Upload(ctx, storage.Scope{OwnerID: actor.UserID, InvitationID: id.String()}, sub.Uploads)
	if err != nil {
		s.logAudit(ctx, actor, id.String(), "INVITATION_UPDATE_FAILED", map[string]interface{}{"error": err.Error()}, auditlog.StatusFailure)
		return nil, err
	}
	for field, url := range res.URLs {
		sub.Values[field] = url
	}

	data, err := EncodeValues(sub.Values)
	if err != nil {
		s.Uploads.Discard(context.WithoutCancel(ctx), res)
		return nil, err
	}
	affected, err := s.Repo.UpdateCustomData(ctx, id, actor.UserID, data)
	if err != nil {
		s.Uploads.Discard(context.WithoutCancel(ctx), res)
		s.logAudit(ctx, actor, id.String(), "INVITATION_UPDATE_FAILED", map[string]interface{}{"error": err.Error()}, auditlog.StatusFailure)
		return nil, fmt.Errorf("update invitation: %w", err)
	}
	if affected == 0 {
		// removed between load and save; the new objects have no row to point at
		s.Uploads.Discard(context.WithoutCancel(ctx), res)
		s.Log.Warn().Str("invitation_id", id.String()).Msg("⚠️ update matched no rows")
		s.logAudit(ctx, actor, id.String(), "INVITATION_UPDATE_FAILED", map[string]interface{}{"error": ErrNotFound.Error()}, auditlog.StatusFailure)
		return nil, ErrNotFound
	}

	inv.CustomData = data
	s.logAudit(ctx, actor, id.String(), "INVITATION_UPDATED", map[string]interface{}{"fields": len(sub.Values)}, auditlog.StatusSuccess)
	s.publish(ctx, notification.EventInvitationUpdated, id, actor.UserID, nil)
	return inv, nil
}

// ===========================
// 🗑️ Delete Invitation
// ===========================

func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	affected, err := s.Repo.Delete(ctx, id, actor.UserID)
	if err != nil {
		s.logAudit(ctx, actor, id.String(), "INVITATION_DELETE_FAILED", map[string]interface{}{"error": err.Error()}, auditlog.StatusFailure)
		return fmt.Errorf("delete invitation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.logAudit(ctx, actor, id.String(), "INVITATION_DELETED", nil, auditlog.StatusSuccess)
	s.publish(ctx, notification.EventInvitationDeleted, id, actor.UserID, nil)
	return nil
}

func (s *Service) List(ctx context.Context, ownerID uint) ([]ListItem, error) {
	items, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ShareURL = s.ShareURL(items[i].ID)
	}
	return items, nil
}

func (s *Service) GetOwned(ctx context.Context, id uuid.UUID, ownerID uint) (*Invitation, error) {
	return s.Repo.GetOwned(ctx, id, ownerID)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) logAudit(ctx context.Context, actor Actor, resourceID, action string, details map[string]interface{}, status string) {
	if s.AuditSvc == nil {
		return
	}
	if err := s.AuditSvc.LogAction(ctx, &actor.UserID, auditlog.ResourceInvitation, resourceID, action, details, actor.IP, status); err != nil {
		s.Log.Warn().Err(err).Str("action", action).Msg("⚠️ audit log write failed")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, id uuid.UUID, userID uint, data map[string]interface{}) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, notification.Event{
		Type:         eventType,
		InvitationID: id.String(),
		UserID:       &userID,
		Data:         data,
	})
	if err != nil {
		s.Log.Warn().Err(err).Str("type", eventType).Msg("⚠️ event publish failed")
	}
}
