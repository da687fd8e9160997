// Package storage holds the object stores invitation images are written to
// and the coordinator that uploads a form's pending files.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("invalid object path")

// ObjectStore is the minimal bucket API the upload pipeline needs.
type ObjectStore interface {
	// Upload writes r under path and returns the stored path.
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
}
