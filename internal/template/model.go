package template

import (
	"time"

	"gorm.io/datatypes"
)

// Template is an admin-managed invitation design and its editable field schema.
type Template struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Category        *string        `gorm:"size:100" json:"category"`
	PreviewImageURL *string        `gorm:"type:text" json:"preview_image_url"`
	StructureJSON   datatypes.JSON `gorm:"type:jsonb;not null" json:"structure_json"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

// Structure parses the stored schema.
func (t *Template) Structure() (Structure, error) {
	return ParseStructure(t.StructureJSON)
}

// TemplateRequest is the admin create/update payload. StructureJSON is the raw
// text typed into the admin editor.
type TemplateRequest struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category"`
	PreviewImageURL string `json:"preview_image_url"`
	StructureJSON   string `json:"structure_json" binding:"required"`
}

// Actor identifies who performed a mutation, for the audit trail.
type Actor struct {
	UserID uint
	IP     string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
