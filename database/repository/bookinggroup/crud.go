package bookinggroup

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorhub/models"
)

// RecordBookingID collapses the check-then-insert of the idempotency key
// into one INSERT ... ON CONFLICT DO NOTHING; zero affected rows is the
// duplicate signal.
func (r *GormBookingGroupRepo) RecordBookingID(ctx context.Context, bookingID, email string) (bool, error) {
	record := models.BookingIDRecord{BookingID: bookingID, Email: email}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if res.Error != nil {
		return false, fmt.Errorf("error recording booking id %s: %w", bookingID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MergeSession locks the group row FOR UPDATE for the duration of the
// read-merge-write, so two concurrent bookings for the same pair both land.
func (r *GormBookingGroupRepo) MergeSession(ctx context.Context, email, eventID string, entry models.SessionEntry) (*models.BookingGroup, bool, error) {
	var group models.BookingGroup
	var added bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ? AND event_id = ?", email, eventID).
			Take(&group).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			group = models.BookingGroup{
				Email:             email,
				EventID:           eventID,
				SessionStartTimes: models.SessionList{},
			}
		}

		added = group.Merge(entry)

		if group.ID == 0 {
			return tx.Create(&group).Error
		}
		return tx.Model(&models.BookingGroup{}).
			Where("id = ?", group.ID).
			Updates(map[string]interface{}{
				"session_start_times": group.SessionStartTimes,
				"booking_count":       group.BookingCount,
			}).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("error merging session for %s/%s: %w", email, eventID, err)
	}
	return &group, added, nil
}

// GetGroup fetches the group for (email, eventID); (nil, nil) when absent.
func (r *GormBookingGroupRepo) GetGroup(ctx context.Context, email, eventID string) (*models.BookingGroup, error) {
	var group models.BookingGroup
	err := r.db.WithContext(ctx).
		Where("email = ? AND event_id = ?", email, eventID).
		Take(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking group for %s/%s: %w", email, eventID, err)
	}
	return &group, nil
}

// MarkNotified records the count through which a block email went out.
func (r *GormBookingGroupRepo) MarkNotified(ctx context.Context, email, eventID string, notifiedCount int) error {
	err := r.db.WithContext(ctx).
		Model(&models.BookingGroup{}).
		Where("email = ? AND event_id = ?", email, eventID).
		Updates(map[string]interface{}{
			"sent_email":     true,
			"notified_count": notifiedCount,
		}).Error
	if err != nil {
		return fmt.Errorf("error marking group %s/%s notified: %w", email, eventID, err)
	}
	return nil
}
