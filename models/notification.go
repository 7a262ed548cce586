package models

// ReminderPayload is the asynq task payload for a scheduled session
// reminder email.
type ReminderPayload struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	EventID   string `json:"eventId"`
	StartTime string `json:"startTime"`
	TimeZone  string `json:"timeZone,omitempty"`
}
