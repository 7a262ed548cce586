package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tutorhub/config"
	"tutorhub/models"
	"tutorhub/utils"
)

// mediumDateTime is how session times are rendered in email bodies,
// e.g. "Jun 1, 2024, 10:00 AM".
const mediumDateTime = "Jan 2, 2006, 3:04 PM"

// HTTPEmailService delivers mail through the transactional email provider's
// REST API.
type HTTPEmailService struct {
	BaseURL string
	APIKey  string
	From    string
	Client  *http.Client
}

// NewHTTPEmailService builds the production email sender from AppConfig.
func NewHTTPEmailService() *HTTPEmailService {
	return &HTTPEmailService{
		BaseURL: config.AppConfig.EmailAPIURL,
		APIKey:  config.AppConfig.EmailAPIKey,
		From:    config.AppConfig.EmailFrom,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// emailRequest is the provider's send-message body.
type emailRequest struct {
	From      string            `json:"from"`
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	Template  string            `json:"template"`
	Variables map[string]any    `json:"variables,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// SendBlockConfirmation emails the guardian their completed block of 6
// session times, converted to the supplied timezone.
func (s *HTTPEmailService) SendBlockConfirmation(ctx context.Context, msg BlockConfirmation) error {
	subject := "Your upcoming tutoring sessions"
	if msg.Template == TemplateWelcome {
		subject = "Welcome! Your first tutoring sessions are booked"
	}

	req := emailRequest{
		From:     s.From,
		To:       msg.To,
		Subject:  subject,
		Template: string(msg.Template),
		Variables: map[string]any{
			"name":     msg.Name,
			"event":    msg.EventID,
			"sessions": FormatSessionTimes(msg.StartTimes, msg.TimeZone),
		},
	}
	return s.send(ctx, req)
}

// SendSessionReminder emails a single upcoming-session reminder.
func (s *HTTPEmailService) SendSessionReminder(ctx context.Context, p models.ReminderPayload) error {
	req := emailRequest{
		From:     s.From,
		To:       p.Email,
		Subject:  "Reminder: upcoming tutoring session",
		Template: string(TemplateReminder),
		Variables: map[string]any{
			"name":    p.Name,
			"event":   p.EventID,
			"session": FormatSessionTime(p.StartTime, p.TimeZone),
		},
	}
	return s.send(ctx, req)
}

func (s *HTTPEmailService) send(ctx context.Context, req emailRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("email API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		utils.GetLogger().Warn("email API rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("to", req.To),
			zap.String("template", req.Template),
		)
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// FormatSessionTimes renders session start times in tz as medium date-time
// strings. An empty or unknown timezone falls back to UTC; an unparseable
// start time is passed through raw.
func FormatSessionTimes(startTimes []string, tz string) []string {
	out := make([]string, 0, len(startTimes))
	for _, s := range startTimes {
		out = append(out, FormatSessionTime(s, tz))
	}
	return out
}

// FormatSessionTime renders one start time in tz.
func FormatSessionTime(start, tz string) string {
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	t, err := models.ParseStartTime(start)
	if err != nil {
		return start
	}
	return t.In(loc).Format(mediumDateTime)
}
