package services

import (
	"context"
	"log"
	"time"

	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/timeutil"

	"github.com/robfig/cron/v3"
)

// Default schedules, evaluated in the business timezone
const (
	DefaultReminderSpec = "0 17 * * *"
	TokenCleanupSpec    = "@daily"
)

const jobTimeout = 30 * time.Second

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron          *cron.Cron
	records       repositories.AttendanceRepository
	refreshTokens repositories.RefreshTokenRepository
	notifier      EventNotifier
	reminderSpec  string
	now           func() time.Time
}

// NewCronService creates the scheduler; an empty reminderSpec selects DefaultReminderSpec
func NewCronService(
	records repositories.AttendanceRepository,
	refreshTokens repositories.RefreshTokenRepository,
	notifier EventNotifier,
	reminderSpec string,
) *CronService {
	if reminderSpec == "" {
		reminderSpec = DefaultReminderSpec
	}
	logger := cron.PrintfLogger(log.Default())
	return &CronService{
		cron: cron.New(
			cron.WithLocation(timeutil.Location()),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		records:       records,
		refreshTokens: refreshTokens,
		notifier:      notifier,
		reminderSpec:  reminderSpec,
		now:           timeutil.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.reminderSpec, s.RemindUnpaid); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(TokenCleanupSpec, s.CleanupTokens); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("🚀 CronService started (reminder: %s)", s.reminderSpec)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// RemindUnpaid publishes today's open records that still owe dues
func (s *CronService) RemindUnpaid() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start, end := timeutil.DayBounds(s.now())
	records, err := s.records.ListUnpaidOpen(ctx, start, end)
	if err != nil {
		log.Printf("❌ Payment reminder query error: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	pending := make([]map[string]interface{}, len(records))
	for i, r := range records {
		pending[i] = map[string]interface{}{
			"attendance_id": r.ID,
			"driver_id":     r.DriverID,
			"full_name":     r.FullName,
			"balance":       r.Balance,
		}
	}

	s.notifier.Publish(domain.EventPaymentReminder, map[string]interface{}{
		"count":   len(records),
		"records": pending,
	})
	log.Printf("🔔 Payment reminder sent for %d unpaid records", len(records))
}

// CleanupTokens deletes expired refresh tokens
func (s *CronService) CleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.refreshTokens.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🗑️ Deleted %d expired refresh tokens", n)
	}
}
