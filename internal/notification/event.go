// Package notification publishes domain events about invitations and RSVPs
// for downstream consumers (reminder mailers, analytics).
package notification

import (
	"context"
	"time"
)

const (
	EventInvitationCreated = "invitation.created"
	EventInvitationUpdated = "invitation.updated"
	EventInvitationDeleted = "invitation.deleted"
	EventRSVPRecorded      = "rsvp.recorded"
)

type Event struct {
	Type         string                 `json:"type"`
	InvitationID string                 `json:"invitation_id"`
	UserID       *uint                  `json:"user_id,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
