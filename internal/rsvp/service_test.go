package rsvp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/internal/invitation"
	"github.com/sharath018/invitation-backend/internal/notification"
	"github.com/sharath018/invitation-backend/internal/rsvp"
	"github.com/sharath018/invitation-backend/internal/template"
	"github.com/sharath018/invitation-backend/internal/testutil"
)

type fixture struct {
	svc    *rsvp.Service
	events *notification.Recorder
	inv    *invitation.Invitation
	owner  uint
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t, &template.Template{}, &invitation.Invitation{}, &rsvp.RSVP{})
	ctx := context.Background()

	tplRepo := template.NewRepository(db)
	tpl := &template.Template{Name: "Wedding", StructureJSON: []byte(`{"fields":[{"name":"couple","label":"Couple","type":"text"}]}`)}
	if err := tplRepo.Create(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	invRepo := invitation.NewRepository(db)
	inv := &invitation.Invitation{UserID: 7, TemplateID: tpl.ID, CustomData: []byte(`{"couple":"A & B"}`)}
	if err := invRepo.Create(ctx, inv); err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	f := &fixture{events: &notification.Recorder{}, inv: inv, owner: 7}
	f.svc = rsvp.NewService(rsvp.NewRepository(db), invRepo, template.NewService(tplRepo, nil, zerolog.Nop()), nil, f.events, zerolog.Nop())
	return f
}

func TestSubmitAndGuestList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inputs := []rsvp.Input{
		{GuestName: "Jane Doe", IsAttending: "yes", GuestCount: "2"},
		{GuestName: "Bob", IsAttending: "yes", GuestCount: "1"},
		{GuestName: "Carol", IsAttending: "no", GuestCount: "1", Notes: "abroad"},
	}
	for _, in := range inputs {
		out, err := f.svc.Submit(ctx, f.inv.ID, in, "10.0.0.1")
		if err != nil || out.State != rsvp.StateRecorded {
			t.Fatalf("Submit(%s) = %v, %v", in.GuestName, out, err)
		}
	}

	list, err := f.svc.GuestList(ctx, f.inv.ID, f.owner)
	if err != nil {
		t.Fatalf("GuestList() error = %v", err)
	}
	var names []string
	for _, g := range list.Guests {
		names = append(names, g.GuestName)
	}
	if diff := cmp.Diff([]string{"Jane Doe", "Bob", "Carol"}, names); diff != "" {
		t.Errorf("guest order mismatch (-want +got):\n%s", diff)
	}
	want := rsvp.Summary{AttendingGuests: 3, NotAttending: 1, TotalResponses: 3}
	if diff := cmp.Diff(want, list.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if list.TemplateName != "Wedding" {
		t.Errorf("TemplateName = %q", list.TemplateName)
	}

	if got := f.events.Types(); len(got) != 3 || got[0] != notification.EventRSVPRecorded {
		t.Errorf("events = %v, want 3 rsvp.recorded", got)
	}
}

func TestSubmitRejectedIsNotStored(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	out, err := f.svc.Submit(ctx, f.inv.ID, rsvp.Input{GuestName: "J", IsAttending: "yes", GuestCount: "1"}, "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.State != rsvp.StateRejected {
		t.Fatalf("State = %s, want rejected", out.State)
	}
	list, err := f.svc.GuestList(ctx, f.inv.ID, f.owner)
	if err != nil {
		t.Fatalf("GuestList() error = %v", err)
	}
	if len(list.Guests) != 0 {
		t.Errorf("stored %d guests, want 0", len(list.Guests))
	}
	if len(f.events.Events()) != 0 {
		t.Errorf("published %d events for a rejected response", len(f.events.Events()))
	}
}

func TestSubmitUnknownInvitation(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Submit(context.Background(), uuid.New(), rsvp.Input{GuestName: "Jane", IsAttending: "yes", GuestCount: "1"}, "")
	if !errors.Is(err, invitation.ErrNotFound) {
		t.Fatalf("Submit() error = %v, want ErrNotFound", err)
	}
}

func TestGuestListRequiresOwner(t *testing.T) {
	f := setup(t)
	_, err := f.svc.GuestList(context.Background(), f.inv.ID, f.owner+1)
	if !errors.Is(err, invitation.ErrNotFound) {
		t.Fatalf("GuestList() error = %v, want ErrNotFound", err)
	}
}
