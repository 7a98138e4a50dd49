package services

import (
	"context"
	"log"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"
)

// DefaultLogoutWait is how long a kiosk waits for an administrator
const DefaultLogoutWait = 30 * time.Second

// LogoutBroker suspends kiosk logout requests until an administrator
// completes the logout or the wait window closes
type LogoutBroker struct {
	attendance *AttendanceService
	waiters    *WaiterRegistry
	notifier   EventNotifier
	wait       time.Duration
}

// NewLogoutBroker creates a broker; wait <= 0 selects DefaultLogoutWait
func NewLogoutBroker(attendance *AttendanceService, waiters *WaiterRegistry, notifier EventNotifier, wait time.Duration) *LogoutBroker {
	if wait <= 0 {
		wait = DefaultLogoutWait
	}
	return &LogoutBroker{
		attendance: attendance,
		waiters:    waiters,
		notifier:   notifier,
		wait:       wait,
	}
}

// PendingLogout is a registered logout request
type PendingLogout struct {
	Driver *models.Driver
	Record *models.Attendance
	Waiter *Waiter
}

// Begin validates the tap, registers a waiter for the driver's active record
// and announces the request to administrators
func (b *LogoutBroker) Begin(ctx context.Context, cardID, deviceID string) (*PendingLogout, error) {
	driver, err := b.attendance.authorizeTap(ctx, cardID, deviceID)
	if err != nil {
		return nil, err
	}

	record, err := b.attendance.activeRecord(ctx, driver)
	if err != nil {
		return nil, err
	}
	if !record.IsPaid() {
		return nil, domain.ErrNotPaid
	}

	waiter := b.waiters.Register(WaiterKey{DriverID: driver.DriverID, RecordID: record.ID}, b.wait)

	b.notifier.Publish(domain.EventLogoutRequested, map[string]interface{}{
		"driver_id":     driver.DriverID,
		"attendance_id": record.ID,
		"full_name":     record.FullName,
		"action":        "logout_request",
		"status":        200,
	})

	return &PendingLogout{Driver: driver, Record: record, Waiter: waiter}, nil
}

// Await blocks until the waiter's outcome arrives. If ctx ends first the
// waiter is withdrawn, unless a resolver already claimed it.
func (b *LogoutBroker) Await(ctx context.Context, p *PendingLogout) LogoutOutcome {
	select {
	case outcome := <-p.Waiter.Done():
		return outcome
	case <-ctx.Done():
		if b.waiters.Release(p.Waiter) {
			log.Printf("⚠️ Logout waiter %s abandoned: %v", p.Waiter.Key, ctx.Err())
		}
		return <-p.Waiter.Done()
	}
}

// RequestLogout is Begin followed by Await
func (b *LogoutBroker) RequestLogout(ctx context.Context, cardID, deviceID string) (LogoutOutcome, error) {
	pending, err := b.Begin(ctx, cardID, deviceID)
	if err != nil {
		return LogoutOutcome{}, err
	}
	return b.Await(ctx, pending), nil
}

// Pending returns the number of kiosks currently waiting
func (b *LogoutBroker) Pending() int {
	return b.waiters.Len()
}
