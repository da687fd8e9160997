package template

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed seed/templates.yaml
var builtinTemplates []byte

type seedTemplate struct {
	ID              uint    `yaml:"id"`
	Name            string  `yaml:"name"`
	Category        string  `yaml:"category"`
	PreviewImageURL string  `yaml:"preview_image_url"`
	Fields          []Field `yaml:"fields"`
}

// LoadSeed decodes a YAML list of templates and validates every schema.
func LoadSeed(raw []byte) ([]Template, error) {
	var items []seedTemplate
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make([]Template, 0, len(items))
	for _, it := range items {
		st := Structure{Fields: it.Fields}
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("seed template %d: %w", it.ID, err)
		}
		b, err := json.Marshal(st)
		if err != nil {
			return nil, err
		}
		out = append(out, Template{
			ID:              it.ID,
			Name:            it.Name,
			Category:        optional(it.Category),
			PreviewImageURL: optional(it.PreviewImageURL),
			StructureJSON:   datatypes.JSON(b),
		})
	}
	return out, nil
}

// seedMark records that a built-in template was seeded once. A template an
// admin deletes keeps its mark and is not recreated on the next start.
type seedMark struct {
	TemplateID uint      `gorm:"primaryKey"`
	SeededAt   time.Time `gorm:"autoCreateTime"`
}

func (seedMark) TableName() string {
	return "template_seeds"
}

// SeedBuiltins inserts each built-in template at most once over the life of
// the database. Existing rows are never overwritten so admin edits survive
// restarts, and deleted built-ins stay deleted.
func SeedBuiltins(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	items, err := LoadSeed(builtinTemplates)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(&seedMark{}); err != nil {
		return fmt.Errorf("migrate template seeds: %w", err)
	}

	created := 0
	for i := range items {
		id := items[i].ID
		var marks int64
		if err := db.WithContext(ctx).Model(&seedMark{}).Where("template_id = ?", id).Count(&marks).Error; err != nil {
			return err
		}
		if marks > 0 {
			continue
		}

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := NewRepository(tx)
			exists, err := repo.Exists(ctx, id)
			if err != nil {
				return err
			}
			// rows from before the marks existed are adopted as they are
			if !exists {
				if err := repo.Create(ctx, &items[i]); err != nil {
					return err
				}
				created++
			}
			return tx.Create(&seedMark{TemplateID: id}).Error
		})
		if err != nil {
			return fmt.Errorf("seed template %d: %w", id, err)
		}
	}

	// explicit ids leave the postgres sequence behind; move it past the seeds
	if created > 0 && db.Dialector.Name() == "postgres" {
		err := db.WithContext(ctx).Exec(
			"SELECT setval(pg_get_serial_sequence('templates', 'id'), (SELECT MAX(id) FROM templates))",
		).Error
		if err != nil {
			return fmt.Errorf("sync templates sequence: %w", err)
		}
	}

	log.Info().Int("created", created).Int("builtin", len(items)).Msg("🌱 Template seed complete")
	return nil
}
