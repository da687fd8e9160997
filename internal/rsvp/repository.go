package rsvp

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, row *RSVP) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

// ListByInvitation returns responses oldest first.
func (r *Repository) ListByInvitation(ctx context.Context, invitationID uuid.UUID) ([]RSVP, error) {
	var rows []RSVP
	err := r.DB.WithContext(ctx).
		Where("invitation_id = ?", invitationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
