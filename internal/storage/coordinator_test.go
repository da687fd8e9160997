package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/formengine"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (s *fakeStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	if s.failOn != "" && strings.HasSuffix(path, s.failOn) {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = string(b)
	return path, nil
}

func (s *fakeStore) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (s *fakeStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func pending(name, body string) formengine.PendingFile {
	return formengine.PendingFile{
		Filename: name,
		Size:     int64(len(body)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func fixedCoordinator(store ObjectStore) *Coordinator {
	c := NewCoordinator(store, zerolog.Nop())
	c.now = func() time.Time { return time.UnixMilli(1717000000000) }
	return c
}

func TestObjectPath(t *testing.T) {
	at := time.UnixMilli(1717000000000)
	tests := []struct {
		name  string
		scope Scope
		field string
		file  string
		want  string
	}{
		{"create", Scope{OwnerID: 7}, "cake", "cake.png", "7/1717000000000_cake_cake.png"},
		{"edit", Scope{OwnerID: 7, InvitationID: "abc"}, "cake", "cake.png", "7/abc-1717000000000_cake_cake.png"},
		{"strips directories", Scope{OwnerID: 7}, "doc", "../../etc/passwd", "7/1717000000000_doc_passwd"},
		{"windows path", Scope{OwnerID: 7}, "me", `C:\photos\me.jpg`, "7/1717000000000_me_me.jpg"},
		{"separator in field", Scope{OwnerID: 7}, "a/b", "x.png", "7/1717000000000_a_b_x.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectPath(tt.scope, at, tt.field, tt.file); got != tt.want {
				t.Fatalf("ObjectPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUploadSameFilenameInTwoFields(t *testing.T) {
	store := newFakeStore()
	c := fixedCoordinator(store)

	res, err := c.Upload(context.Background(), Scope{OwnerID: 4}, map[string]formengine.PendingFile{
		"bridePhoto": pending("IMG_0001.jpg", "bride"),
		"groomPhoto": pending("IMG_0001.jpg", "groom"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.URLs["bridePhoto"] == res.URLs["groomPhoto"] {
		t.Fatalf("both fields resolved to %q", res.URLs["bridePhoto"])
	}
	want := map[string]string{
		"4/1717000000000_bridePhoto_IMG_0001.jpg": "bride",
		"4/1717000000000_groomPhoto_IMG_0001.jpg": "groom",
	}
	if diff := cmp.Diff(want, store.objects); diff != "" {
		t.Fatalf("stored objects mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadResolvesPublicURLs(t *testing.T) {
	store := newFakeStore()
	c := fixedCoordinator(store)

	res, err := c.Upload(context.Background(), Scope{OwnerID: 3}, map[string]formengine.PendingFile{
		"coverPhoto": pending("cover.jpg", "c"),
		"bridePhoto": pending("bride.jpg", "b"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	want := map[string]string{
		"coverPhoto": "https://cdn.test/3/1717000000000_coverPhoto_cover.jpg",
		"bridePhoto": "https://cdn.test/3/1717000000000_bridePhoto_bride.jpg",
	}
	if diff := cmp.Diff(want, res.URLs); diff != "" {
		t.Fatalf("URLs mismatch (-want +got):\n%s", diff)
	}
	if got := store.objects["3/1717000000000_coverPhoto_cover.jpg"]; got != "c" {
		t.Fatalf("stored body = %q", got)
	}
}

func TestUploadFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	store.failOn = "broken.jpg"
	c := fixedCoordinator(store)

	res, err := c.Upload(context.Background(), Scope{OwnerID: 3}, map[string]formengine.PendingFile{
		"a": pending("ok.jpg", "1"),
		"b": pending("broken.jpg", "2"),
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("Upload() error = %v, want ErrUploadFailed", err)
	}
	if res != nil {
		t.Fatalf("Upload() result = %+v, want nil", res)
	}
	if len(store.objects) != 0 {
		t.Fatalf("objects left behind: %v", store.objects)
	}
}

func TestDiscardRemovesUploadedObjects(t *testing.T) {
	store := newFakeStore()
	c := fixedCoordinator(store)

	res, err := c.Upload(context.Background(), Scope{OwnerID: 1, InvitationID: "inv"}, map[string]formengine.PendingFile{
		"x": pending("x.png", "x"),
		"y": pending("y.png", "y"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	c.Discard(context.Background(), res)

	sort.Strings(store.deleted)
	want := []string{"1/inv-1717000000000_x_x.png", "1/inv-1717000000000_y_y.png"}
	if diff := cmp.Diff(want, store.deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadNothing(t *testing.T) {
	res, err := fixedCoordinator(newFakeStore()).Upload(context.Background(), Scope{OwnerID: 1}, nil)
	if err != nil || len(res.URLs) != 0 {
		t.Fatalf("Upload(nil) = %+v, %v", res, err)
	}
}
