// Package formengine turns a template's field list into an editable form:
// ordered input descriptors, value edits, pending image selections and
// submit-time validation. It makes no network calls.
package formengine

import (
	"fmt"
	"io"

	"github.com/sharath018/invitation-backend/internal/template"
)

// PendingFile is a selected image not yet uploaded.
type PendingFile struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Input describes one rendered form control.
type Input struct {
	Name        string             `json:"name"`
	Label       string             `json:"label"`
	Type        template.FieldType `json:"type"`
	Control     Control            `json:"control"`
	Required    bool               `json:"required"`
	Value       string             `json:"value"`
	PreviewURL  string             `json:"preview_url,omitempty"`
	PendingFile string             `json:"pending_file,omitempty"`
}

// Submission is the validated result of a form: flat values plus the image
// selections still to upload.
type Submission struct {
	Values  map[string]string
	Uploads map[string]PendingFile
}

// Form holds the state of one editing session.
type Form struct {
	fields   []template.Field
	values   map[string]string
	previews map[string]string
	pending  map[string]PendingFile
}

// New builds a form for fields in schema order. initial carries stored custom
// data in edit mode and may be nil; text and date values missing from it start
// as "" and image values become previews.
func New(fields []template.Field, initial map[string]string) *Form {
	f := &Form{
		fields:   fields,
		values:   make(map[string]string, len(fields)),
		previews: make(map[string]string),
		pending:  make(map[string]PendingFile),
	}
	for _, field := range fields {
		v := initial[field.Name]
		if strategyFor(field.Type).acceptsFiles() {
			if v != "" {
				f.previews[field.Name] = v
			}
			continue
		}
		f.values[field.Name] = v
	}
	return f
}

func (f *Form) field(name string) (template.Field, bool) {
	for _, field := range f.fields {
		if field.Name == name {
			return field, true
		}
	}
	return template.Field{}, false
}

// SetValue edits a text or date field.
func (f *Form) SetValue(name, value string) error {
	field, ok := f.field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s := strategyFor(field.Type)
	if s.acceptsFiles() {
		return fmt.Errorf("%w: %q", ErrNotEditable, name)
	}
	f.values[name] = s.normalize(value)
	return nil
}

// Select records a pending file for an image field. A nil file cancels the
// selection. An oversized file is rejected and also drops any earlier pending
// file for the field.
func (f *Form) Select(name string, file *PendingFile) error {
	field, ok := f.field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !strategyFor(field.Type).acceptsFiles() {
		return fmt.Errorf("%w: %q", ErrNotImageField, name)
	}

	if file == nil {
		delete(f.pending, name)
		return nil
	}
	if file.Size > MaxImageSize {
		delete(f.pending, name)
		return fmt.Errorf("%s: %w", field.Label, ErrFileTooLarge)
	}
	f.pending[name] = *file
	return nil
}

// Pending returns the current file selections.
func (f *Form) Pending() map[string]PendingFile {
	out := make(map[string]PendingFile, len(f.pending))
	for k, v := range f.pending {
		out[k] = v
	}
	return out
}

// Inputs returns one descriptor per field in schema order.
func (f *Form) Inputs() []Input {
	out := make([]Input, 0, len(f.fields))
	for _, field := range f.fields {
		in := Input{
			Name:     field.Name,
			Label:    field.Label,
			Type:     field.Type,
			Control:  strategyFor(field.Type).control(),
			Required: field.Required,
		}
		if in.Control == ControlFile {
			in.PreviewURL = f.previews[field.Name]
			if p, ok := f.pending[field.Name]; ok {
				in.PendingFile = p.Filename
			}
		} else {
			in.Value = f.values[field.Name]
		}
		out = append(out, in)
	}
	return out
}

// Submit validates the form. On failure it returns a *ValidationError and no
// submission.
func (f *Form) Submit() (*Submission, error) {
	verr := &ValidationError{}
	sub := &Submission{
		Values:  make(map[string]string, len(f.fields)),
		Uploads: f.Pending(),
	}

	for _, field := range f.fields {
		s := strategyFor(field.Type)
		if s.acceptsFiles() {
			// without a new selection the existing image is kept
			if _, selected := f.pending[field.Name]; !selected {
				if url, ok := f.previews[field.Name]; ok {
					sub.Values[field.Name] = url
				}
			}
			continue
		}

		v := f.values[field.Name]
		for _, msg := range s.validate(field, v) {
			verr.Add(field.Name, msg)
		}
		sub.Values[field.Name] = v
	}

	if !verr.Empty() {
		return nil, verr
	}
	return sub, nil
}
