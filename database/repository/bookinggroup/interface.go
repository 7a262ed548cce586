package bookinggroup

import (
	"context"

	"tutorhub/models"
)

// BookingGroupRepository is the persistence contract for booking groups and
// booking-id idempotency records.
type BookingGroupRepository interface {
	// RecordBookingID inserts the idempotency record for a webhook's booking
	// id. It reports false when the id was already recorded, which marks the
	// webhook as a duplicate delivery.
	RecordBookingID(ctx context.Context, bookingID, email string) (bool, error)

	// MergeSession folds a session entry into the group for (email, eventID),
	// creating the group on first booking. The merge runs in a single
	// transaction holding a row lock, so concurrent bookings for the same
	// pair cannot lose updates. Reports whether the entry was added (false
	// when an entry with the same start_time string already existed).
	MergeSession(ctx context.Context, email, eventID string, entry models.SessionEntry) (*models.BookingGroup, bool, error)

	// GetGroup fetches the group for (email, eventID); (nil, nil) when none
	// exists.
	GetGroup(ctx context.Context, email, eventID string) (*models.BookingGroup, error)

	// MarkNotified durably records that a consolidated block email has been
	// delivered through notifiedCount bookings.
	MarkNotified(ctx context.Context, email, eventID string, notifiedCount int) error
}
