package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("invitation not found")

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, inv *Invitation) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

// GetByID loads an invitation regardless of owner, for the public page.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	var inv Invitation
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *Repository) GetOwned(ctx context.Context, id uuid.UUID, ownerID uint) (*Invitation, error) {
	var inv Invitation
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

type listRow struct {
	ID                      uuid.UUID
	TemplateID              uint
	CreatedAt               time.Time
	TemplateName            *string
	TemplatePreviewImageURL *string
}

// ListByOwner returns the owner's invitations newest first with their template.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uint) ([]ListItem, error) {
	var rows []listRow
	err := r.DB.WithContext(ctx).
		Table("invitations i").
		Select(`i.id, i.template_id, i.created_at,
			t.name AS template_name, t.preview_image_url AS template_preview_image_url`).
		Joins("LEFT JOIN templates t ON t.id = i.template_id").
		Where("i.user_id = ?", ownerID).
		Order("i.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		item := ListItem{ID: row.ID, TemplateID: row.TemplateID, CreatedAt: row.CreatedAt}
		if row.TemplateName != nil {
			item.Template.Name = *row.TemplateName
		}
		item.Template.PreviewImageURL = row.TemplatePreviewImageURL
		items = append(items, item)
	}
	return items, nil
}

// UpdateCustomData replaces the data of an owned invitation. Zero rows
// affected means the id/owner pair did not match.
func (r *Repository) UpdateCustomData(ctx context.Context, id uuid.UUID, ownerID uint, data datatypes.JSON) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&Invitation{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("custom_data", data)
	return res.RowsAffected, res.Error
}

// Delete removes an owned invitation. RSVPs are left in place.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&Invitation{})
	return res.RowsAffected, res.Error
}
