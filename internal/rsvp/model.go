package rsvp

import (
	"time"

	"github.com/google/uuid"
)

// RSVP is one guest response. Rows are only ever inserted.
type RSVP struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InvitationID uuid.UUID `gorm:"type:uuid;not null;index" json:"invitation_id"`
	GuestName    string    `gorm:"size:255;not null" json:"guest_name"`
	IsAttending  bool      `gorm:"not null" json:"is_attending"`
	GuestCount   int       `gorm:"not null;default:1" json:"guest_count"`
	Notes        *string   `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (RSVP) TableName() string {
	return "rsvps"
}

// Input is the raw guest form as typed. Every field is a string so rejected
// submissions can be echoed back unchanged.
type Input struct {
	InvitationID string `form:"invitation_id" json:"invitation_id"`
	GuestName    string `form:"guest_name" json:"guest_name" validate:"min=2"`
	IsAttending  string `form:"is_attending" json:"is_attending" validate:"required,oneof=yes no"`
	GuestCount   string `form:"guest_count" json:"guest_count"`
	Notes        string `form:"notes" json:"notes"`
}

// Summary aggregates a guest list.
type Summary struct {
	AttendingGuests int `json:"attending_guests"`
	NotAttending    int `json:"not_attending"`
	TotalResponses  int `json:"total_responses"`
}

// Summarize counts attending heads (sum of guest_count over attending rows)
// and declining responses (one per row).
func Summarize(rows []RSVP) Summary {
	s := Summary{TotalResponses: len(rows)}
	for _, r := range rows {
		if r.IsAttending {
			s.AttendingGuests += r.GuestCount
		} else {
			s.NotAttending++
		}
	}
	return s
}

type GuestList struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	TemplateName string    `json:"template_name,omitempty"`
	Summary      Summary   `json:"summary"`
	Guests       []RSVP    `json:"guests"`
}
