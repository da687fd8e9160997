package invitation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invitation is one user's filled-in copy of a template. CustomData is a flat
// object keyed by the template's field names.
type Invitation struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	TemplateID uint           `gorm:"not null;index" json:"template_id"`
	CustomData datatypes.JSON `gorm:"type:jsonb;not null" json:"custom_data"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Values decodes CustomData into strings. Non-string JSON values are
// stringified; nulls are dropped.
func (i *Invitation) Values() (map[string]string, error) {
	out := make(map[string]string)
	if len(i.CustomData) == 0 {
		return out, nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(i.CustomData, &raw); err != nil {
		return nil, fmt.Errorf("decode custom data: %w", err)
	}
	for k, v := range raw {
		switch tv := v.(type) {
		case nil:
		case string:
			out[k] = tv
		default:
			out[k] = fmt.Sprint(tv)
		}
	}
	return out, nil
}

func EncodeValues(values map[string]string) (datatypes.JSON, error) {
	if values == nil {
		values = map[string]string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// TemplateSummary is the template part of a dashboard row.
type TemplateSummary struct {
	Name            string  `json:"name"`
	PreviewImageURL *string `json:"preview_image_url"`
}

// ListItem is one dashboard row.
type ListItem struct {
	ID         uuid.UUID       `json:"id"`
	TemplateID uint            `json:"template_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Template   TemplateSummary `json:"template"`
	ShareURL   string          `json:"share_url"`
}

// Actor identifies the caller of a mutation.
type Actor struct {
	UserID uint
	IP     string
}
