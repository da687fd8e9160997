package formengine

import (
	"strings"
	"time"

	"github.com/sharath018/invitation-backend/internal/template"
)

// Control is the kind of input a field renders as.
type Control string

const (
	ControlText Control = "text"
	ControlDate Control = "date"
	ControlFile Control = "file"
)

const dateLayout = "2006-01-02"

// strategy is the per-type behaviour of a field.
type strategy interface {
	control() Control
	acceptsFiles() bool
	normalize(value string) string
	validate(f template.Field, value string) []string
}

var strategies = map[template.FieldType]strategy{
	template.FieldText:  textStrategy{},
	template.FieldDate:  dateStrategy{},
	template.FieldImage: imageStrategy{},
}

func strategyFor(t template.FieldType) strategy {
	if s, ok := strategies[t]; ok {
		return s
	}
	return strategies[template.FieldText]
}

func requiredMessage(f template.Field) []string {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	return []string{label + " is required"}
}

type textStrategy struct{}

func (textStrategy) control() Control { return ControlText }
func (textStrategy) acceptsFiles() bool { return false }

// normalize keeps text exactly as typed. Escaping happens where it is
// written out (RenderHTML, JSON encoders), never in storage.
func (textStrategy) normalize(value string) string { return value }

func (textStrategy) validate(f template.Field, value string) []string {
	if f.Required && strings.TrimSpace(value) == "" {
		return requiredMessage(f)
	}
	return nil
}

type dateStrategy struct{}

func (dateStrategy) control() Control { return ControlDate }
func (dateStrategy) acceptsFiles() bool { return false }

func (dateStrategy) normalize(value string) string {
	return strings.TrimSpace(value)
}

func (dateStrategy) validate(f template.Field, value string) []string {
	if value == "" {
		if f.Required {
			return requiredMessage(f)
		}
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		return []string{label + " must be a date (YYYY-MM-DD)"}
	}
	return nil
}

type imageStrategy struct{}

func (imageStrategy) control() Control { return ControlFile }
func (imageStrategy) acceptsFiles() bool { return true }
func (imageStrategy) normalize(value string) string { return strings.TrimSpace(value) }
func (imageStrategy) validate(template.Field, string) []string { return nil }
