package template

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("template not found")

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id uint) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id uint) (int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Template) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Template, error) {
	var t Template
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns templates newest first.
func (r *repository) List(ctx context.Context) ([]Template, error) {
	var out []Template
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *repository) Update(ctx context.Context, t *Template) error {
	return r.db.WithContext(ctx).Model(&Template{}).Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"name":              t.Name,
			"category":          t.Category,
			"preview_image_url": t.PreviewImageURL,
			"structure_json":    t.StructureJSON,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Template{}, id)
	return res.RowsAffected, res.Error
}

func (r *repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Template{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
