package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"tutorhub/models"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds the asynq task for one session reminder, scheduled
// at fireAt.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues reminder tasks on the shared Redis queue.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

func (s *AsynqReminderScheduler) Schedule(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = s.Client.EnqueueContext(ctx, task, opts...)
	return err
}
