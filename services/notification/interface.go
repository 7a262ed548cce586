package notification

import (
	"context"

	"tutorhub/models"
)

// Template identifies which email template a message uses.
type Template string

const (
	// TemplateWelcome covers a guardian's first completed block of 6.
	TemplateWelcome Template = "welcome"
	// TemplateContinuing covers every subsequent completed block.
	TemplateContinuing Template = "continuing-confirmation"
	// TemplateReminder is the per-session reminder.
	TemplateReminder Template = "session-reminder"
)

// BlockConfirmation is the consolidated email for one completed block of 6
// sessions. StartTimes carries the block's raw session start times; the
// sender converts them to the guardian's timezone before rendering.
type BlockConfirmation struct {
	To         string
	Name       string
	TimeZone   string
	Template   Template
	EventID    string
	StartTimes []string
}

// EmailService sends transactional email through the hosted delivery API.
type EmailService interface {
	SendBlockConfirmation(ctx context.Context, msg BlockConfirmation) error
	SendSessionReminder(ctx context.Context, p models.ReminderPayload) error
}
