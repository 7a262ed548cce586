package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/models"
)

func newTestEmailService(url string) *HTTPEmailService {
	return &HTTPEmailService{
		BaseURL: url,
		APIKey:  "test-key",
		From:    "bookings@tutorhub.example",
		Client:  http.DefaultClient,
	}
}

func TestSendBlockConfirmation(t *testing.T) {
	var got emailRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc := newTestEmailService(server.URL)
	err := svc.SendBlockConfirmation(context.Background(), BlockConfirmation{
		To:       "alice@x.com",
		Name:     "Alice",
		TimeZone: "America/New_York",
		Template: TemplateWelcome,
		EventID:  "E1",
		StartTimes: []string{
			"2024-06-01T10:00:00Z",
			"2024-06-08T10:00:00Z",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "alice@x.com", got.To)
	assert.Equal(t, "bookings@tutorhub.example", got.From)
	assert.Equal(t, string(TemplateWelcome), got.Template)

	sessions, ok := got.Variables["sessions"].([]any)
	require.True(t, ok)
	require.Len(t, sessions, 2)
	// 10:00 UTC on June 1st is 6:00 AM in New York (EDT).
	assert.Equal(t, "Jun 1, 2024, 6:00 AM", sessions[0])
	assert.Equal(t, "Jun 8, 2024, 6:00 AM", sessions[1])
}

func TestSendSessionReminderNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mailbox unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newTestEmailService(server.URL)
	err := svc.SendSessionReminder(context.Background(), models.ReminderPayload{
		Email:     "alice@x.com",
		EventID:   "E1",
		StartTime: "2024-06-01T10:00:00Z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFormatSessionTime(t *testing.T) {
	// Known timezone.
	assert.Equal(t, "Jun 1, 2024, 11:00 AM",
		FormatSessionTime("2024-06-01T10:00:00Z", "Europe/London"))

	// Empty or unknown timezone falls back to UTC.
	assert.Equal(t, "Jun 1, 2024, 10:00 AM",
		FormatSessionTime("2024-06-01T10:00:00Z", ""))
	assert.Equal(t, "Jun 1, 2024, 10:00 AM",
		FormatSessionTime("2024-06-01T10:00:00Z", "Nowhere/Nope"))

	// Unparseable start times pass through raw.
	assert.Equal(t, "not-a-time", FormatSessionTime("not-a-time", "UTC"))
}
