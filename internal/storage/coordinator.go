package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/formengine"
	"golang.org/x/sync/errgroup"
)

var ErrUploadFailed = errors.New("image upload failed")

// Scope decides the object path prefix. InvitationID is empty when creating.
type Scope struct {
	OwnerID      uint
	InvitationID string
}

// Result maps field names to public URLs and remembers what was written so a
// failed save can be rolled back.
type Result struct {
	URLs  map[string]string
	paths []string
}

type Coordinator struct {
	store ObjectStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewCoordinator(store ObjectStore, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store: store,
		log:   log.With().Str("component", "uploads").Logger(),
		now:   time.Now,
	}
}

// ObjectPath builds the storage path for one file. The field name keeps two
// fields that share a filename in the same save apart.
func ObjectPath(scope Scope, at time.Time, field, filename string) string {
	name := cleanField(field) + "_" + cleanFilename(filename)
	if scope.InvitationID != "" {
		return fmt.Sprintf("%d/%s-%d_%s", scope.OwnerID, scope.InvitationID, at.UnixMilli(), name)
	}
	return fmt.Sprintf("%d/%d_%s", scope.OwnerID, at.UnixMilli(), name)
}

func cleanField(field string) string {
	field = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, field)
	if field == "" {
		return "field"
	}
	return field
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == 0 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}

// Upload sends every pending file concurrently. If any upload fails the
// objects already written are deleted and no URLs are returned.
func (c *Coordinator) Upload(ctx context.Context, scope Scope, uploads map[string]formengine.PendingFile) (*Result, error) {
	res := &Result{URLs: make(map[string]string, len(uploads))}
	if len(uploads) == 0 {
		return res, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for field, file := range uploads {
		g.Go(func() error {
			objectPath := ObjectPath(scope, c.now(), field, file.Filename)

			rc, err := file.Open()
			if err != nil {
				return fmt.Errorf("%s: open: %w", field, err)
			}
			defer rc.Close()

			stored, err := c.store.Upload(gctx, objectPath, rc, file.Size, contentType(file))
			if err != nil {
				return fmt.Errorf("%s: %w", field, err)
			}

			mu.Lock()
			res.paths = append(res.paths, stored)
			res.URLs[field] = c.store.PublicURL(stored)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.log.Error().Err(err).Uint("owner_id", scope.OwnerID).Msg("❌ Upload failed, rolling back")
		// the group context is already cancelled; cleanup gets its own
		c.Discard(context.WithoutCancel(ctx), res)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	c.log.Debug().Int("files", len(res.paths)).Uint("owner_id", scope.OwnerID).Msg("📤 Uploads complete")
	return res, nil
}

// Discard best-effort deletes objects from a result whose record was never saved.
func (c *Coordinator) Discard(ctx context.Context, res *Result) {
	if res == nil {
		return
	}
	for _, p := range res.paths {
		if err := c.store.Delete(ctx, p); err != nil {
			c.log.Warn().Err(err).Str("path", p).Msg("⚠️ could not delete orphaned upload")
		}
	}
	res.paths = nil
}

func contentType(f formengine.PendingFile) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
