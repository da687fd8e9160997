package formengine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxImageSize is the largest file accepted for an image field.
const MaxImageSize int64 = 5 * 1024 * 1024

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrNotEditable   = errors.New("field does not take a text value")
	ErrNotImageField = errors.New("field does not accept files")
	ErrFileTooLarge  = fmt.Errorf("file exceeds the %d MB limit", MaxImageSize/(1024*1024))
)

// ValidationError carries one message list per invalid field.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, strings.Join(e.Fields[name], "; "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
