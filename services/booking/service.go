package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorhub/models"
)

// ProcessBooking folds one booking webhook into the guardian's booking
// group. Replayed booking ids short-circuit without touching the session
// list; a completed block of 6 triggers exactly one consolidated email.
func (s *DefaultBookingGroupService) ProcessBooking(ctx context.Context, intake models.BookingIntake) (*models.BookingResult, error) {
	if err := validateIntake(intake); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(intake.Email))

	recorded, err := s.Repo.RecordBookingID(ctx, intake.BookingID, email)
	if err != nil {
		return nil, err
	}
	if !recorded {
		// Duplicate delivery. The merge already happened on the first pass;
		// the only work left is re-attempting a block email the first pass
		// failed to deliver.
		if err := s.retryOwedNotification(ctx, email, intake.EventID, intake.Name, intake.TimeZone); err != nil {
			return nil, err
		}
		return &models.BookingResult{Duplicate: true}, nil
	}

	bookedAt := intake.BookedAt
	if bookedAt.IsZero() {
		bookedAt = time.Now().UTC()
	}
	entry := models.SessionEntry{StartTime: intake.StartTime, BookedAt: bookedAt}

	group, added, err := s.Repo.MergeSession(ctx, email, intake.EventID, entry)
	if err != nil {
		return nil, err
	}
	s.invalidateConfirmationCache(ctx, email, intake.EventID)

	if added {
		s.scheduleReminder(ctx, intake, email)
	}

	if shouldNotify(group, entry, added) {
		if err := s.sendBlockEmail(ctx, group, intake.Name, intake.TimeZone); err != nil {
			return nil, fmt.Errorf("block confirmation email failed: %w", err)
		}
	}

	return &models.BookingResult{BookingCount: group.BookingCount}, nil
}

func validateIntake(intake models.BookingIntake) error {
	switch {
	case strings.TrimSpace(intake.BookingID) == "":
		return NewValidationError("booking id is required")
	case strings.TrimSpace(intake.EventID) == "":
		return NewValidationError("event id is required")
	case strings.TrimSpace(intake.StartTime) == "":
		return NewValidationError("session start time is required")
	case strings.TrimSpace(intake.Email) == "":
		return NewValidationError("attendee email is required")
	}
	return nil
}

// retryOwedNotification re-sends a completed block's email when the first
// delivery attempt failed after the write had already landed.
func (s *DefaultBookingGroupService) retryOwedNotification(ctx context.Context, email, eventID, name, tz string) error {
	group, err := s.Repo.GetGroup(ctx, email, eventID)
	if err != nil || group == nil {
		return err
	}
	if group.BookingCount == 0 || group.BookingCount%BlockSize != 0 {
		return nil
	}
	if group.NotifiedCount >= group.BookingCount {
		return nil
	}
	if err := s.sendBlockEmail(ctx, group, name, tz); err != nil {
		return fmt.Errorf("block confirmation email failed: %w", err)
	}
	return nil
}

// sendBlockEmail delivers the latest block of 6 and records the durable
// notified marker.
func (s *DefaultBookingGroupService) sendBlockEmail(ctx context.Context, group *models.BookingGroup, name, tz string) error {
	msg := blockConfirmation(group, name, tz)
	if err := s.Email.SendBlockConfirmation(ctx, msg); err != nil {
		return err
	}
	// The email is out; a failure to persist the marker must not fail the
	// request. Worst case a later replay re-sends the same block.
	if err := s.Repo.MarkNotified(ctx, group.Email, group.EventID, group.BookingCount); err != nil {
		s.Logger.Warn("failed to record notified count",
			zap.String("email", group.Email),
			zap.String("eventId", group.EventID),
			zap.Error(err),
		)
	}
	group.SentEmail = true
	group.NotifiedCount = group.BookingCount
	return nil
}

// scheduleReminder queues a reminder email ahead of the session start.
// Scheduling problems are logged, never surfaced to the webhook caller.
func (s *DefaultBookingGroupService) scheduleReminder(ctx context.Context, intake models.BookingIntake, email string) {
	if s.Reminders == nil {
		return
	}
	start, err := models.ParseStartTime(intake.StartTime)
	if err != nil {
		s.Logger.Warn("cannot schedule reminder for unparseable start time",
			zap.String("startTime", intake.StartTime), zap.Error(err))
		return
	}
	fireAt := start.Add(-s.ReminderLead)
	if !fireAt.After(time.Now()) {
		return
	}
	payload := models.ReminderPayload{
		Email:     email,
		Name:      intake.Name,
		EventID:   intake.EventID,
		StartTime: intake.StartTime,
		TimeZone:  intake.TimeZone,
	}
	if err := s.Reminders.Schedule(ctx, payload, fireAt); err != nil {
		s.Logger.Warn("failed to schedule session reminder",
			zap.String("email", email), zap.Error(err))
	}
}
