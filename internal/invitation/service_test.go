package invitation_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/formengine"
	"github.com/sharath018/invitation-backend/internal/invitation"
	"github.com/sharath018/invitation-backend/internal/notification"
	"github.com/sharath018/invitation-backend/internal/storage"
	"github.com/sharath018/invitation-backend/internal/template"
	"github.com/sharath018/invitation-backend/internal/testutil"
	"gorm.io/gorm"
)

type fakeUploader struct {
	mu        sync.Mutex
	fail      bool
	scopes    []storage.Scope
	discarded int
	// discardErr is the context error seen by the last Discard
	discardErr error
	// afterUpload runs once the objects are "stored"
	afterUpload func()
}

func (u *fakeUploader) Upload(ctx context.Context, scope storage.Scope, uploads map[string]formengine.PendingFile) (*storage.Result, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.scopes = append(u.scopes, scope)
	if u.fail && len(uploads) > 0 {
		return nil, fmt.Errorf("%w: bucket down", storage.ErrUploadFailed)
	}
	res := &storage.Result{URLs: map[string]string{}}
	for field, f := range uploads {
		res.URLs[field] = storage.ObjectPath(scope, time.UnixMilli(1), field, f.Filename)
	}
	if u.afterUpload != nil {
		u.afterUpload()
	}
	return res, nil
}

func (u *fakeUploader) Discard(ctx context.Context, res *storage.Result) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.discarded++
	u.discardErr = ctx.Err()
}

type fixture struct {
	db       *gorm.DB
	svc      *invitation.Service
	uploads  *fakeUploader
	events   *notification.Recorder
	template *template.Template
}

const sampleStructure = `{"fields":[
	{"name":"guestName","label":"Guest Name","type":"text","required":true},
	{"name":"eventDate","label":"Event Date","type":"date"},
	{"name":"photo","label":"Photo","type":"image"}
]}`

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t, &template.Template{}, &invitation.Invitation{})

	tplRepo := template.NewRepository(db)
	tpl := &template.Template{Name: "Birthday", StructureJSON: []byte(sampleStructure)}
	if err := tplRepo.Create(context.Background(), tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	f := &fixture{db: db, uploads: &fakeUploader{}, events: &notification.Recorder{}, template: tpl}
	f.svc = invitation.NewService(
		invitation.NewRepository(db),
		template.NewService(tplRepo, nil, zerolog.Nop()),
		f.uploads,
		nil,
		f.events,
		"https://invites.test",
		zerolog.Nop(),
	)
	return f
}

func photo(name string) *formengine.PendingFile {
	return &formengine.PendingFile{
		Filename: name,
		Size:     3,
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("img")), nil },
	}
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&invitation.Invitation{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCreateRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A", "eventDate": "2025-06-01", "stray": "ignored"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if inv.ID == uuid.Nil {
		t.Fatal("Create() did not assign an id")
	}

	stored, err := f.svc.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	got, err := stored.Values()
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	want := map[string]string{"guestName": "A", "eventDate": "2025-06-01"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("custom data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{notification.EventInvitationCreated}, f.events.Types()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateWithImageStoresPublicURL(t *testing.T) {
	f := setup(t)

	inv, err := f.svc.Create(context.Background(), invitation.Actor{UserID: 9}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "B"},
		Files:  map[string]*formengine.PendingFile{"photo": photo("cake.png")},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	values, _ := inv.Values()
	if got, want := values["photo"], "9/1_photo_cake.png"; got != want {
		t.Fatalf("photo = %q, want %q", got, want)
	}
	if f.uploads.scopes[0].InvitationID != "" {
		t.Fatalf("create used edit scope %+v", f.uploads.scopes[0])
	}
}

func TestCreateValidationPersistsNothing(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"eventDate": "2025-06-01"},
	})
	var verr *formengine.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want *ValidationError", err)
	}
	if _, ok := verr.Fields["guestName"]; !ok {
		t.Fatalf("field errors = %v, want guestName", verr.Fields)
	}
	if n := f.count(t); n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
	if len(f.uploads.scopes) != 0 {
		t.Fatal("uploads attempted for an invalid form")
	}
}

func TestCreateRejectsOversizedImage(t *testing.T) {
	f := setup(t)
	big := photo("huge.png")
	big.Size = formengine.MaxImageSize + 1

	_, err := f.svc.Create(context.Background(), invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
		Files:  map[string]*formengine.PendingFile{"photo": big},
	})
	var verr *formengine.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["photo"]) == 0 {
		t.Fatalf("Create() error = %v, want photo field error", err)
	}
}

func TestCreateUploadFailureAbortsSave(t *testing.T) {
	f := setup(t)
	f.uploads.fail = true

	_, err := f.svc.Create(context.Background(), invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
		Files:  map[string]*formengine.PendingFile{"photo": photo("a.png")},
	})
	if !errors.Is(err, storage.ErrUploadFailed) {
		t.Fatalf("Create() error = %v, want ErrUploadFailed", err)
	}
	if n := f.count(t); n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
}

func TestCreatePersistFailureDiscardsUploads(t *testing.T) {
	f := setup(t)
	if err := f.db.Migrator().DropTable(&invitation.Invitation{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := f.svc.Create(context.Background(), invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
		Files:  map[string]*formengine.PendingFile{"photo": photo("a.png")},
	})
	if err == nil {
		t.Fatal("Create() error = nil with no invitations table")
	}
	if f.uploads.discarded != 1 {
		t.Fatalf("discarded = %d, want 1", f.uploads.discarded)
	}
}

func TestCreateCancelledMidSaveStillDiscards(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// the client goes away after the objects are written
	f.uploads.afterUpload = cancel

	_, err := f.svc.Create(ctx, invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
		Files:  map[string]*formengine.PendingFile{"photo": photo("a.png")},
	})
	if err == nil {
		t.Fatal("Create() error = nil with a cancelled request")
	}
	if f.uploads.discarded != 1 {
		t.Fatalf("discarded = %d, want 1", f.uploads.discarded)
	}
	if f.uploads.discardErr != nil {
		t.Fatalf("Discard ran with a dead context: %v", f.uploads.discardErr)
	}
}

func TestCreateUnknownTemplate(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), invitation.Actor{UserID: 1}, 999, invitation.Edits{})
	if !errors.Is(err, invitation.ErrTemplateNotFound) {
		t.Fatalf("Create() error = %v, want ErrTemplateNotFound", err)
	}
}

func TestUpdateKeepsImageAndUsesEditScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := invitation.Actor{UserID: 5}

	inv, err := f.svc.Create(ctx, owner, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
		Files:  map[string]*formengine.PendingFile{"photo": photo("first.png")},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := f.svc.Update(ctx, owner, inv.ID, invitation.Edits{Values: map[string]string{"guestName": "Ann"}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	values, _ := updated.Values()
	want := map[string]string{"guestName": "Ann", "eventDate": "", "photo": "5/1_photo_first.png"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values after text edit (-want +got):\n%s", diff)
	}

	updated, err = f.svc.Update(ctx, owner, inv.ID, invitation.Edits{
		Files: map[string]*formengine.PendingFile{"photo": photo("second.png")},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	values, _ = updated.Values()
	if got, want := values["photo"], fmt.Sprintf("5/%s-1_photo_second.png", inv.ID); got != want {
		t.Fatalf("photo = %q, want %q", got, want)
	}
}

func TestUpdateByNonOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = f.svc.Update(ctx, invitation.Actor{UserID: 2}, inv.ID, invitation.Edits{Values: map[string]string{"guestName": "Mallory"}})
	if !errors.Is(err, invitation.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}

	data, _ := invitation.EncodeValues(map[string]string{"guestName": "Mallory"})
	affected, err := f.svc.Repo.UpdateCustomData(ctx, inv.ID, 2, data)
	if err != nil || affected != 0 {
		t.Fatalf("UpdateCustomData(non-owner) = %d, %v; want 0 rows", affected, err)
	}

	stored, _ := f.svc.GetByID(ctx, inv.ID)
	values, _ := stored.Values()
	if values["guestName"] != "A" {
		t.Fatalf("guestName = %q, non-owner update changed the row", values["guestName"])
	}
}

func TestUpdateOfRowDeletedMidSave(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := invitation.Actor{UserID: 3}

	inv, err := f.svc.Create(ctx, owner, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f.uploads.afterUpload = func() {
		if err := f.db.Delete(&invitation.Invitation{}, "id = ?", inv.ID).Error; err != nil {
			t.Errorf("delete row: %v", err)
		}
	}

	_, err = f.svc.Update(ctx, owner, inv.ID, invitation.Edits{
		Files: map[string]*formengine.PendingFile{"photo": photo("late.png")},
	})
	if !errors.Is(err, invitation.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
	if f.uploads.discarded != 1 {
		t.Fatalf("discarded = %d, want the orphaned upload removed", f.uploads.discarded)
	}
	if diff := cmp.Diff([]string{notification.EventInvitationCreated}, f.events.Types()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteIsOwnerFiltered(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invitation.Actor{UserID: 1}, f.template.ID, invitation.Edits{
		Values: map[string]string{"guestName": "A"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.svc.Delete(ctx, invitation.Actor{UserID: 2}, inv.ID); !errors.Is(err, invitation.ErrNotFound) {
		t.Fatalf("Delete(non-owner) error = %v, want ErrNotFound", err)
	}
	if err := f.svc.Delete(ctx, invitation.Actor{UserID: 1}, inv.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.svc.GetByID(ctx, inv.ID); !errors.Is(err, invitation.ErrNotFound) {
		t.Fatalf("GetByID() after delete error = %v", err)
	}
}

func TestListNewestFirstWithTemplate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := f.svc.Repo

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	older := &invitation.Invitation{UserID: 1, TemplateID: f.template.ID, CustomData: []byte(`{}`), CreatedAt: base}
	newer := &invitation.Invitation{UserID: 1, TemplateID: f.template.ID, CustomData: []byte(`{}`), CreatedAt: base.Add(time.Hour)}
	other := &invitation.Invitation{UserID: 2, TemplateID: f.template.ID, CustomData: []byte(`{}`), CreatedAt: base}
	for _, inv := range []*invitation.Invitation{older, newer, other} {
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	items, err := f.svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() = %d items, want 2", len(items))
	}
	if items[0].ID != newer.ID || items[1].ID != older.ID {
		t.Fatalf("List() order = %v, %v", items[0].ID, items[1].ID)
	}
	if items[0].Template.Name != "Birthday" {
		t.Errorf("Template.Name = %q", items[0].Template.Name)
	}
	if want := "https://invites.test/invite/" + newer.ID.String(); items[0].ShareURL != want {
		t.Errorf("ShareURL = %q, want %q", items[0].ShareURL, want)
	}
}

func TestEditFormDropsKeysOutsideSchema(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv := &invitation.Invitation{UserID: 1, TemplateID: f.template.ID, CustomData: []byte(`{"guestName":"A","legacy":"x","photo":"p.png"}`)}
	if err := f.svc.Repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := f.svc.Update(ctx, invitation.Actor{UserID: 1}, inv.ID, invitation.Edits{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	values, _ := updated.Values()
	want := map[string]string{"guestName": "A", "eventDate": "", "photo": "p.png"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
