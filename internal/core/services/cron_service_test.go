package services

import (
	"context"
	"testing"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemindUnpaidPublishesOpenUnpaidRecords(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")
	f.addDriver(t, "DRV-2", "DEV-2", "CARD-2")
	f.addDriver(t, "DRV-3", "DEV-3", "CARD-3")

	today := f.clock
	f.clock = today.AddDate(0, 0, -1)
	_, err := f.attendance.TimeIn(ctx, "CARD-3", "DEV-3")
	require.NoError(t, err)
	f.clock = today

	_, err = f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	paid, err := f.attendance.TimeIn(ctx, "CARD-2", "DEV-2")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, paid.ID, "DRV-2")
	require.NoError(t, err)

	reminders := &recordingNotifier{}
	cron := NewCronService(f.records, repositories.NewRefreshTokenRepository(f.db), reminders, "")
	cron.now = func() time.Time { return today.Add(9 * time.Hour) }
	cron.RemindUnpaid()

	require.Len(t, reminders.events, 1)
	ev := reminders.events[0]
	assert.Equal(t, domain.EventPaymentReminder, ev.Name)

	data := ev.Data.(map[string]interface{})
	assert.Equal(t, 1, data["count"])
	pending := data["records"].([]map[string]interface{})
	require.Len(t, pending, 1, "yesterday's unfinished record is not part of today's reminder")
	assert.Equal(t, "DRV-1", pending[0]["driver_id"])
}

func TestRemindUnpaidQuietWhenAllPaid(t *testing.T) {
	f := newFixture(t, time.Second)
	reminders := &recordingNotifier{}
	cron := NewCronService(f.records, repositories.NewRefreshTokenRepository(f.db), reminders, "")
	cron.now = func() time.Time { return f.clock }

	cron.RemindUnpaid()
	assert.Empty(t, reminders.events)
}

func TestCleanupTokensDeletesExpired(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	tokens := repositories.NewRefreshTokenRepository(f.db)

	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{AdminID: 1, TokenHash: "old", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{AdminID: 1, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}))

	NewCronService(f.records, tokens, NopNotifier{}, "").CleanupTokens()

	_, err := tokens.GetByTokenHash(ctx, "live")
	assert.NoError(t, err)
	_, err = tokens.GetByTokenHash(ctx, "old")
	assert.Error(t, err)
}

func TestCronRejectsBadSchedule(t *testing.T) {
	f := newFixture(t, time.Second)
	cron := NewCronService(f.records, repositories.NewRefreshTokenRepository(f.db), NopNotifier{}, "not a schedule")
	assert.Error(t, cron.Start())
}
