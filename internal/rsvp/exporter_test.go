package rsvp_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/invitation-backend/internal/rsvp"
	"github.com/xuri/excelize/v2"
)

func sampleList() *rsvp.GuestList {
	notes := "Vegetarian, José"
	guests := []rsvp.RSVP{
		{ID: 1, GuestName: "Jane Doe", IsAttending: true, GuestCount: 2, Notes: &notes, CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 2, GuestName: "Bob", IsAttending: false, GuestCount: 1, CreatedAt: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)},
	}
	return &rsvp.GuestList{InvitationID: uuid.New(), TemplateName: "Wedding", Summary: rsvp.Summarize(guests), Guests: guests}
}

func TestExportExcel(t *testing.T) {
	list := sampleList()
	data, mimeType, name, err := rsvp.Export("excel", list)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if mimeType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("mime = %q", mimeType)
	}
	if name != "guests_"+list.InvitationID.String()+".xlsx" {
		t.Errorf("name = %q", name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Guests")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) < 3 || rows[0][0] != "Guest Name" || rows[1][0] != "Jane Doe" || rows[2][1] != "No" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExportPDF(t *testing.T) {
	data, mimeType, _, err := rsvp.Export(rsvp.FormatPDF, sampleList())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if mimeType != "application/pdf" || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("got %q with %d bytes, want a PDF document", mimeType, len(data))
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	if _, _, _, err := rsvp.Export("csv", sampleList()); !errors.Is(err, rsvp.ErrUnsupportedFormat) {
		t.Errorf("Export(csv) error = %v, want ErrUnsupportedFormat", err)
	}
}
