package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MissingFieldError reports a required webhook field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// flexString accepts a JSON string or number; the scheduling tool sends
// numeric ids in some payload versions and strings in others.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Attendee is one attendee of a scheduled session.
type Attendee struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	TimeZone    string `json:"timeZone"`
	TimeZoneAlt string `json:"timezone"`
}

// bookingPayload carries the alternative field spellings the scheduling tool
// uses across payload versions. Normalize coalesces them.
type bookingPayload struct {
	BookingID    flexString `json:"bookingId"`
	ID           flexString `json:"id"`
	EventTypeID  flexString `json:"eventTypeId"`
	EventTypeAlt flexString `json:"event_type_id"`
	StartTime    string     `json:"startTime"`
	StartTimeAlt string     `json:"start_time"`
	Attendees    []Attendee `json:"attendees"`
}

// BookingWebhook is the raw intake payload: either `{ "payload": {...} }` or
// the same fields flattened at the top level.
type BookingWebhook struct {
	Payload *bookingPayload `json:"payload"`
	bookingPayload
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// BookingIntake is the canonical, validated form of a booking webhook.
// Everything downstream of the HTTP boundary works with this type only.
type BookingIntake struct {
	BookingID string
	EventID   string
	StartTime string
	Email     string
	Name      string
	TimeZone  string
	BookedAt  time.Time
}

// Normalize maps the accepted payload shapes onto one BookingIntake,
// lowercasing the attendee email. It returns a MissingFieldError when any of
// booking id, event id, start time, or attendee email cannot be resolved.
func (w *BookingWebhook) Normalize() (*BookingIntake, error) {
	p := w.bookingPayload
	if w.Payload != nil {
		p = *w.Payload
	}

	intake := &BookingIntake{
		BookingID: coalesce(string(p.BookingID), string(p.ID)),
		EventID:   coalesce(string(p.EventTypeID), string(p.EventTypeAlt)),
		StartTime: coalesce(p.StartTime, p.StartTimeAlt),
	}
	if intake.BookingID == "" {
		return nil, &MissingFieldError{Field: "bookingId"}
	}
	if intake.EventID == "" {
		return nil, &MissingFieldError{Field: "eventTypeId"}
	}
	if intake.StartTime == "" {
		return nil, &MissingFieldError{Field: "startTime"}
	}
	if len(p.Attendees) == 0 || strings.TrimSpace(p.Attendees[0].Email) == "" {
		return nil, &MissingFieldError{Field: "attendees[0].email"}
	}

	attendee := p.Attendees[0]
	intake.Email = strings.ToLower(strings.TrimSpace(attendee.Email))
	intake.Name = attendee.Name
	intake.TimeZone = coalesce(attendee.TimeZone, attendee.TimeZoneAlt)
	return intake, nil
}
