package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SessionEntry is one scheduled tutoring session: the session's start time
// plus the moment it was booked. StartTime keeps the raw webhook string so
// the stored value round-trips exactly; deduplication compares these strings.
type SessionEntry struct {
	StartTime string    `json:"start_time"`
	BookedAt  time.Time `json:"booked_at"`
}

// SessionList is the ordered list of session entries persisted as a jsonb
// column on the booking group row.
type SessionList []SessionEntry

// Value implements driver.Valuer so gorm can write the list as jsonb.
func (l SessionList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (l *SessionList) Scan(value interface{}) error {
	if value == nil {
		*l = SessionList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for session list", value)
	}
	return json.Unmarshal(data, l)
}

// SortAscending orders the list by parsed start time, oldest first.
// Unparseable start times sort to the front.
func (l SessionList) SortAscending() {
	sort.SliceStable(l, func(i, j int) bool {
		ti, _ := ParseStartTime(l[i].StartTime)
		tj, _ := ParseStartTime(l[j].StartTime)
		return ti.Before(tj)
	})
}

// LastN returns a copy of the last n entries (all entries when the list is
// shorter than n).
func (l SessionList) LastN(n int) SessionList {
	if len(l) <= n {
		return append(SessionList{}, l...)
	}
	return append(SessionList{}, l[len(l)-n:]...)
}

// StartTimes returns the raw start time strings in list order.
func (l SessionList) StartTimes() []string {
	out := make([]string, 0, len(l))
	for _, e := range l {
		out = append(out, e.StartTime)
	}
	return out
}

// ParseStartTime parses a session start time as sent by the scheduling tool.
func ParseStartTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// BookingGroup aggregates all session bookings for one guardian email and
// one event type. The session list is re-sorted ascending on every write and
// BookingCount always mirrors its length. NotifiedCount records the booking
// count through which a consolidated block email has been delivered, so a
// replayed webhook can heal a lost email without double-sending.
type BookingGroup struct {
	ID                uint        `gorm:"primaryKey" json:"-"`
	Email             string      `gorm:"uniqueIndex:idx_booking_groups_email_event" json:"email"`
	EventID           string      `gorm:"column:event_id;uniqueIndex:idx_booking_groups_email_event" json:"event_id"`
	SessionStartTimes SessionList `gorm:"column:session_start_times;type:jsonb" json:"session_start_times"`
	BookingCount      int         `json:"booking_count"`
	SentEmail         bool        `json:"sent_email"`
	NotifiedCount     int         `json:"notified_count"`
	CreatedAt         time.Time   `json:"-"`
	UpdatedAt         time.Time   `json:"-"`
}

func (BookingGroup) TableName() string {
	return "booking_groups"
}

// Merge appends entry unless an existing entry carries the same raw
// start_time string, then re-sorts the list and refreshes the cached count.
// Reports whether the entry was actually added.
func (g *BookingGroup) Merge(entry SessionEntry) bool {
	for _, e := range g.SessionStartTimes {
		if e.StartTime == entry.StartTime {
			g.BookingCount = len(g.SessionStartTimes)
			return false
		}
	}
	g.SessionStartTimes = append(g.SessionStartTimes, entry)
	g.SessionStartTimes.SortAscending()
	g.BookingCount = len(g.SessionStartTimes)
	return true
}

// BookingIDRecord is the idempotency key for a processed booking webhook.
// Insert-only; an existing row means the webhook is a duplicate delivery.
type BookingIDRecord struct {
	BookingID string    `gorm:"column:booking_id;primaryKey" json:"booking_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`
}

func (BookingIDRecord) TableName() string {
	return "booking_ids"
}

// BookingResult is the outcome of processing one booking webhook.
type BookingResult struct {
	Duplicate    bool
	BookingCount int
}
