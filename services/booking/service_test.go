package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/models"
	"tutorhub/services/notification"
)

type fakeRepo struct {
	ids    map[string]string
	groups map[string]*models.BookingGroup
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		ids:    make(map[string]string),
		groups: make(map[string]*models.BookingGroup),
	}
}

func groupKey(email, eventID string) string {
	return email + "|" + eventID
}

func (r *fakeRepo) RecordBookingID(_ context.Context, bookingID, email string) (bool, error) {
	if _, ok := r.ids[bookingID]; ok {
		return false, nil
	}
	r.ids[bookingID] = email
	return true, nil
}

func (r *fakeRepo) MergeSession(_ context.Context, email, eventID string, entry models.SessionEntry) (*models.BookingGroup, bool, error) {
	key := groupKey(email, eventID)
	group, ok := r.groups[key]
	if !ok {
		group = &models.BookingGroup{Email: email, EventID: eventID, SessionStartTimes: models.SessionList{}}
		r.groups[key] = group
	}
	added := group.Merge(entry)
	return group, added, nil
}

func (r *fakeRepo) GetGroup(_ context.Context, email, eventID string) (*models.BookingGroup, error) {
	return r.groups[groupKey(email, eventID)], nil
}

func (r *fakeRepo) MarkNotified(_ context.Context, email, eventID string, notifiedCount int) error {
	if group := r.groups[groupKey(email, eventID)]; group != nil {
		group.SentEmail = true
		group.NotifiedCount = notifiedCount
	}
	return nil
}

type fakeEmail struct {
	confirmations []notification.BlockConfirmation
	reminders     []models.ReminderPayload
	fail          bool
}

func (f *fakeEmail) SendBlockConfirmation(_ context.Context, msg notification.BlockConfirmation) error {
	if f.fail {
		return errors.New("email API returned 502")
	}
	f.confirmations = append(f.confirmations, msg)
	return nil
}

func (f *fakeEmail) SendSessionReminder(_ context.Context, p models.ReminderPayload) error {
	f.reminders = append(f.reminders, p)
	return nil
}

type fakeScheduler struct {
	scheduled []models.ReminderPayload
	fireAts   []time.Time
}

func (f *fakeScheduler) Schedule(_ context.Context, p models.ReminderPayload, fireAt time.Time) error {
	f.scheduled = append(f.scheduled, p)
	f.fireAts = append(f.fireAts, fireAt)
	return nil
}

func newTestService() (*DefaultBookingGroupService, *fakeRepo, *fakeEmail, *fakeScheduler) {
	repo := newFakeRepo()
	email := &fakeEmail{}
	scheduler := &fakeScheduler{}
	svc := &DefaultBookingGroupService{
		Repo:         repo,
		Email:        email,
		Reminders:    scheduler,
		ReminderLead: 24 * time.Hour,
		Logger:       zap.NewNop(),
	}
	return svc, repo, email, scheduler
}

func testIntake(id, start string) models.BookingIntake {
	return models.BookingIntake{
		BookingID: id,
		EventID:   "E1",
		StartTime: start,
		Email:     "alice@x.com",
		Name:      "Alice",
		TimeZone:  "UTC",
	}
}

// weeklyStart returns the start time of the i-th weekly session (1-based),
// far enough in the future that reminder scheduling always applies.
func weeklyStart(i int) string {
	base := time.Date(2100, 1, 6, 10, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, 7*(i-1)).Format(time.RFC3339)
}

func TestTriggerFiresExactlyOncePerBlockOfSix(t *testing.T) {
	svc, _, email, _ := newTestService()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		res, err := svc.ProcessBooking(ctx, testIntake(fmt.Sprintf("B%d", i), weeklyStart(i)))
		require.NoError(t, err)
		assert.Equal(t, i, res.BookingCount)

		switch i {
		case 6:
			require.Len(t, email.confirmations, 1, "welcome email expected at the 6th booking")
		case 12:
			require.Len(t, email.confirmations, 2, "continuing email expected at the 12th booking")
		default:
			wantSent := 0
			if i > 6 {
				wantSent = 1
			}
			assert.Len(t, email.confirmations, wantSent, "no email expected at booking %d", i)
		}
	}

	welcome := email.confirmations[0]
	assert.Equal(t, notification.TemplateWelcome, welcome.Template)
	require.Len(t, welcome.StartTimes, 6)
	assert.Equal(t, weeklyStart(1), welcome.StartTimes[0])
	assert.Equal(t, weeklyStart(6), welcome.StartTimes[5])

	continuing := email.confirmations[1]
	assert.Equal(t, notification.TemplateContinuing, continuing.Template)
	require.Len(t, continuing.StartTimes, 6)
	assert.Equal(t, weeklyStart(7), continuing.StartTimes[0])
	assert.Equal(t, weeklyStart(12), continuing.StartTimes[5])
}

func TestDuplicateBookingIDIsIdempotent(t *testing.T) {
	svc, repo, email, _ := newTestService()
	ctx := context.Background()

	first, err := svc.ProcessBooking(ctx, testIntake("B1", weeklyStart(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, first.BookingCount)

	for i := 0; i < 3; i++ {
		replay, err := svc.ProcessBooking(ctx, testIntake("B1", weeklyStart(1)))
		require.NoError(t, err)
		assert.True(t, replay.Duplicate)
	}

	group, err := repo.GetGroup(ctx, "alice@x.com", "E1")
	require.NoError(t, err)
	assert.Equal(t, 1, group.BookingCount)
	assert.Len(t, group.SessionStartTimes, 1)
	assert.Empty(t, email.confirmations)
}

func TestSameStartTimeIsDeduped(t *testing.T) {
	svc, repo, email, _ := newTestService()
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		_, err := svc.ProcessBooking(ctx, testIntake(fmt.Sprintf("B%d", i), weeklyStart(i)))
		require.NoError(t, err)
	}
	require.Len(t, email.confirmations, 1)

	// New booking id, but a start time that already exists in the list.
	res, err := svc.ProcessBooking(ctx, testIntake("B7", weeklyStart(6)))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 6, res.BookingCount)

	group, err := repo.GetGroup(ctx, "alice@x.com", "E1")
	require.NoError(t, err)
	assert.Equal(t, 6, group.BookingCount)
	assert.Len(t, email.confirmations, 1, "dedupe must not re-trigger the block email")
}

func TestReplayHealsFailedBlockEmail(t *testing.T) {
	svc, repo, email, _ := newTestService()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := svc.ProcessBooking(ctx, testIntake(fmt.Sprintf("B%d", i), weeklyStart(i)))
		require.NoError(t, err)
	}

	// The block-completing write succeeds but the email does not.
	email.fail = true
	_, err := svc.ProcessBooking(ctx, testIntake("B6", weeklyStart(6)))
	require.Error(t, err)

	group, err := repo.GetGroup(ctx, "alice@x.com", "E1")
	require.NoError(t, err)
	assert.Equal(t, 6, group.BookingCount)
	assert.Zero(t, group.NotifiedCount)

	// The scheduling tool redelivers the same webhook; the replay re-attempts
	// the owed email without touching the session list.
	email.fail = false
	replay, err := svc.ProcessBooking(ctx, testIntake("B6", weeklyStart(6)))
	require.NoError(t, err)
	assert.True(t, replay.Duplicate)
	require.Len(t, email.confirmations, 1)
	assert.Equal(t, notification.TemplateWelcome, email.confirmations[0].Template)

	group, _ = repo.GetGroup(ctx, "alice@x.com", "E1")
	assert.Equal(t, 6, group.NotifiedCount)
	assert.True(t, group.SentEmail)

	// Further replays find nothing owed.
	replay, err = svc.ProcessBooking(ctx, testIntake("B6", weeklyStart(6)))
	require.NoError(t, err)
	assert.True(t, replay.Duplicate)
	assert.Len(t, email.confirmations, 1)
}

func TestValidationErrors(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	invalid := testIntake("B1", weeklyStart(1))
	invalid.Email = "  "

	_, err := svc.ProcessBooking(ctx, invalid)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestLastSix(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	// No group yet: empty list, not an error.
	lastSix, err := svc.LastSix(ctx, "alice@x.com", "E1")
	require.NoError(t, err)
	assert.NotNil(t, lastSix)
	assert.Len(t, lastSix, 0)

	for i := 1; i <= 8; i++ {
		_, err := svc.ProcessBooking(ctx, testIntake(fmt.Sprintf("B%d", i), weeklyStart(i)))
		require.NoError(t, err)
	}

	lastSix, err = svc.LastSix(ctx, "alice@x.com", "E1")
	require.NoError(t, err)
	require.Len(t, lastSix, 6)
	assert.Equal(t, weeklyStart(3), lastSix[0].StartTime)
	assert.Equal(t, weeklyStart(8), lastSix[5].StartTime)
}

func TestReminderScheduling(t *testing.T) {
	svc, _, _, scheduler := newTestService()
	ctx := context.Background()

	// Future session: reminder queued at start minus the configured lead.
	_, err := svc.ProcessBooking(ctx, testIntake("B1", weeklyStart(1)))
	require.NoError(t, err)
	require.Len(t, scheduler.scheduled, 1)
	start, _ := models.ParseStartTime(weeklyStart(1))
	assert.Equal(t, start.Add(-24*time.Hour), scheduler.fireAts[0])

	// Session already in the past: nothing queued.
	past := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	_, err = svc.ProcessBooking(ctx, testIntake("B2", past))
	require.NoError(t, err)
	assert.Len(t, scheduler.scheduled, 1)

	// Deduped entry: nothing queued either.
	_, err = svc.ProcessBooking(ctx, testIntake("B3", weeklyStart(1)))
	require.NoError(t, err)
	assert.Len(t, scheduler.scheduled, 1)
}
