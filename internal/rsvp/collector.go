package rsvp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type State string

const (
	StateUnsubmitted State = "unsubmitted"
	StateValidating  State = "validating"
	StateRecorded    State = "recorded"
	StateRejected    State = "rejected"
)

const (
	MsgRecorded         = "Thank you for your response!"
	MsgValidationFailed = "Validation failed. Please check your input."
	MsgStoreFailed      = "Database error: Could not save your RSVP."
)

var (
	ErrAlreadyRecorded = errors.New("rsvp already recorded")
	ErrStoreFailed     = errors.New("could not save rsvp")
)

// per-field message, keyed by the form name
var fieldMessages = map[string]string{
	"guest_name":   "Name is required",
	"is_attending": "Please select an option",
	"guest_count":  "At least one guest is required",
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	})
	return v
}()

// Recorder persists accepted responses.
type Recorder interface {
	Create(ctx context.Context, r *RSVP) error
}

// Outcome is what the guest sees after a submission.
type Outcome struct {
	State   State               `json:"state"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Values  Input               `json:"values"`
	RSVP    *RSVP               `json:"rsvp,omitempty"`
}

// Collector runs the guest form for one invitation. Once a response is
// recorded the collector is finished.
type Collector struct {
	invitationID uuid.UUID
	store        Recorder
	state        State
}

func NewCollector(invitationID uuid.UUID, store Recorder) *Collector {
	return &Collector{invitationID: invitationID, store: store, state: StateUnsubmitted}
}

func (c *Collector) State() State {
	return c.state
}

// Submit validates in and records it. A rejected or failed submission leaves
// the collector open for another attempt.
func (c *Collector) Submit(ctx context.Context, in Input) (*Outcome, error) {
	if c.state == StateRecorded {
		return nil, ErrAlreadyRecorded
	}
	c.state = StateValidating

	// the invitation id comes from the page, never from the guest
	in.InvitationID = c.invitationID.String()

	count, fieldErrs := check(in)
	if len(fieldErrs) > 0 {
		c.state = StateRejected
		return &Outcome{State: c.state, Message: MsgValidationFailed, Errors: fieldErrs, Values: in}, nil
	}

	row := &RSVP{
		InvitationID: c.invitationID,
		GuestName:    in.GuestName,
		IsAttending:  in.IsAttending == "yes",
		GuestCount:   count,
	}
	if in.Notes != "" {
		notes := in.Notes
		row.Notes = &notes
	}

	if err := c.store.Create(ctx, row); err != nil {
		c.state = StateRejected
		return &Outcome{State: c.state, Message: MsgStoreFailed, Values: in}, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	c.state = StateRecorded
	return &Outcome{State: c.state, Message: MsgRecorded, Values: in, RSVP: row}, nil
}

// check validates in and returns the coerced guest count.
func check(in Input) (int, map[string][]string) {
	errs := map[string][]string{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs[fe.Field()] = []string{fieldMessages[fe.Field()]}
			}
		}
	}

	count, ok := guestCount(in.GuestCount)
	if !ok {
		errs["guest_count"] = []string{fieldMessages["guest_count"]}
	}

	if len(errs) == 0 {
		return count, nil
	}
	return 0, errs
}

// guestCount coerces the submitted count the way a numeric form field would:
// "3", "3.0" and "1e1" are whole numbers, "2.5" and "0" are not accepted.
func guestCount(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
