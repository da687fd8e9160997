package template

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/auditlog"
	"gorm.io/datatypes"
)

type Service interface {
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id uint) (*Template, error)
	// GetWithStructure loads a template together with its parsed schema.
	GetWithStructure(ctx context.Context, id uint) (*Template, Structure, error)
	Create(ctx context.Context, req TemplateRequest, actor Actor) (*Template, error)
	Update(ctx context.Context, id uint, req TemplateRequest, actor Actor) (*Template, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type service struct {
	repo  Repository
	audit auditlog.Service
	log   zerolog.Logger
}

func NewService(repo Repository, audit auditlog.Service, log zerolog.Logger) Service {
	return &service{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "template").Logger(),
	}
}

func (s *service) List(ctx context.Context) ([]Template, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uint) (*Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetWithStructure(ctx context.Context, id uint) (*Template, Structure, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Structure{}, err
	}
	st, err := t.Structure()
	if err != nil {
		return nil, Structure{}, fmt.Errorf("template %d: %w", id, err)
	}
	return t, st, nil
}

// ===========================
// 🛠️ Admin mutations
// ===========================

func (s *service) Create(ctx context.Context, req TemplateRequest, actor Actor) (*Template, error) {
	structure, err := normalizeStructure(req.StructureJSON)
	if err != nil {
		s.logAudit(ctx, actor, "", "TEMPLATE_CREATE_FAILED", map[string]interface{}{"name": req.Name, "error": err.Error()}, auditlog.StatusFailure)
		return nil, err
	}

	t := &Template{
		Name:            strings.TrimSpace(req.Name),
		Category:        optional(strings.TrimSpace(req.Category)),
		PreviewImageURL: optional(strings.TrimSpace(req.PreviewImageURL)),
		StructureJSON:   structure,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		s.logAudit(ctx, actor, "", "TEMPLATE_CREATE_FAILED", map[string]interface{}{"name": req.Name, "error": err.Error()}, auditlog.StatusFailure)
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logAudit(ctx, actor, idString(t.ID), "TEMPLATE_CREATED", map[string]interface{}{"name": t.Name}, auditlog.StatusSuccess)
	s.log.Info().Uint("template_id", t.ID).Str("name", t.Name).Msg("✅ Template created")
	return t, nil
}

func (s *service) Update(ctx context.Context, id uint, req TemplateRequest, actor Actor) (*Template, error) {
	// parse before touching the row so a bad schema never reaches the store
	structure, err := normalizeStructure(req.StructureJSON)
	if err != nil {
		s.logAudit(ctx, actor, idString(id), "TEMPLATE_UPDATE_FAILED", map[string]interface{}{"error": err.Error()}, auditlog.StatusFailure)
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(req.Name)
	t.Category = optional(strings.TrimSpace(req.Category))
	t.PreviewImageURL = optional(strings.TrimSpace(req.PreviewImageURL))
	t.StructureJSON = structure

	if err := s.repo.Update(ctx, t); err != nil {
		s.logAudit(ctx, actor, idString(id), "TEMPLATE_UPDATE_FAILED", map[string]interface{}{"error": err.Error()}, auditlog.StatusFailure)
		return nil, fmt.Errorf("update template: %w", err)
	}

	s.logAudit(ctx, actor, idString(id), "TEMPLATE_UPDATED", map[string]interface{}{"name": t.Name}, auditlog.StatusSuccess)
	return s.repo.GetByID(ctx, id)
}

// Delete removes the template row. Invitations referencing it keep their data
// and fall back to the unsupported-design display.
func (s *service) Delete(ctx context.Context, id uint, actor Actor) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logAudit(ctx, actor, idString(id), "TEMPLATE_DELETE_FAILED", map[string]interface{}{"error": err.Error()}, auditlog.StatusFailure)
		return fmt.Errorf("delete template: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.logAudit(ctx, actor, idString(id), "TEMPLATE_DELETED", nil, auditlog.StatusSuccess)
	return nil
}

// normalizeStructure parses the admin's raw text and re-encodes it so the
// stored document is canonical.
func normalizeStructure(raw string) (datatypes.JSON, error) {
	st, err := ParseStructure([]byte(raw))
	if err != nil {
		return nil, err
	}
	if st.Fields == nil {
		st.Fields = []Field{}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func (s *service) logAudit(ctx context.Context, actor Actor, resourceID, action string, details map[string]interface{}, status string) {
	if s.audit == nil {
		return
	}
	var uid *uint
	if actor.UserID != 0 {
		uid = &actor.UserID
	}
	if err := s.audit.LogAction(ctx, uid, auditlog.ResourceTemplate, resourceID, action, details, actor.IP, status); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("⚠️ audit log write failed")
	}
}

func idString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

