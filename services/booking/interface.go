package booking

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"tutorhub/database/repository/bookinggroup"
	"tutorhub/models"
	"tutorhub/services/notification"
)

// BlockSize is the number of sessions in one tutoring package: one session
// per week for 6 weeks, sold and confirmed as a unit.
const BlockSize = 6

// BookingGroupService is the interface for booking aggregation and the
// read-side confirmation query.
type BookingGroupService interface {
	ProcessBooking(ctx context.Context, intake models.BookingIntake) (*models.BookingResult, error)
	LastSix(ctx context.Context, email, eventID string) (models.SessionList, error)
}

// ReminderScheduler queues a session reminder for later delivery.
type ReminderScheduler interface {
	Schedule(ctx context.Context, p models.ReminderPayload, fireAt time.Time) error
}

// DefaultBookingGroupService implements BookingGroupService.
type DefaultBookingGroupService struct {
	Repo         bookinggroup.BookingGroupRepository
	Email        notification.EmailService
	Reminders    ReminderScheduler
	CacheClient  *redis.Client
	ReminderLead time.Duration
	Logger       *zap.Logger
}
