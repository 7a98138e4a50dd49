package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/pagination"
	"rfid-attendance/internal/pkg/timeutil"
)

// AttendancePageSize is the fixed page size of the attendance dashboard
const AttendancePageSize = 10

// AttendanceService owns the per-driver attendance lifecycle
type AttendanceService struct {
	drivers  repositories.DriverRepository
	records  repositories.AttendanceRepository
	waiters  *WaiterRegistry
	notifier EventNotifier
	now      func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	drivers repositories.DriverRepository,
	records repositories.AttendanceRepository,
	waiters *WaiterRegistry,
	notifier EventNotifier,
) *AttendanceService {
	return &AttendanceService{
		drivers:  drivers,
		records:  records,
		waiters:  waiters,
		notifier: notifier,
		now:      timeutil.Now,
	}
}

// StatusResult is what a kiosk shows for a card tap
type StatusResult struct {
	Status string
	DevID  string
}

// DeriveStatus applies the status precedence to the driver's open record of
// any day and newest record of today
func DeriveStatus(unfinished, today *models.Attendance) string {
	switch {
	case unfinished != nil && today == nil:
		return domain.StatusUnfinish
	case today == nil:
		return domain.StatusNoIn
	case today.TimeIn != nil && today.TimeOut == nil:
		if today.IsPaid() {
			return domain.StatusInPaid
		}
		return domain.StatusInNoPaid
	case today.TimeIn != nil && today.TimeOut != nil:
		return domain.StatusDone
	default:
		return domain.StatusUnknown
	}
}

// StatusFor reports the attendance status of the driver holding cardID
func (s *AttendanceService) StatusFor(ctx context.Context, cardID string) (*StatusResult, error) {
	driver, err := s.drivers.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("find driver by card: %w", err)
	}
	if driver == nil {
		return nil, domain.ErrCardNotFound
	}
	if !driver.InAttendanceMode() {
		return nil, domain.ErrDeviceNotRegistered
	}

	unfinished, err := s.records.FindUnfinished(ctx, driver.DriverID)
	if err != nil {
		return nil, fmt.Errorf("find unfinished attendance: %w", err)
	}
	start, end := timeutil.DayBounds(s.now())
	today, err := s.records.FindForDay(ctx, driver.DriverID, start, end)
	if err != nil {
		return nil, fmt.Errorf("find today's attendance: %w", err)
	}

	status := DeriveStatus(unfinished, today)
	if status == domain.StatusUnknown {
		log.Printf("⚠️ Unexpected attendance state for driver %s (record %d)", driver.DriverID, today.ID)
	}

	return &StatusResult{Status: status, DevID: driver.DevID}, nil
}

// authorizeTap resolves the driver behind a card tapped on deviceID
func (s *AttendanceService) authorizeTap(ctx context.Context, cardID, deviceID string) (*models.Driver, error) {
	driver, err := s.drivers.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("find driver by card: %w", err)
	}
	if driver == nil {
		return nil, domain.ErrCardNotFound
	}
	if !driver.InAttendanceMode() {
		return nil, domain.ErrDeviceNotRegistered
	}
	if driver.DevID != deviceID {
		return nil, domain.ErrDeviceMismatch
	}
	return driver, nil
}

// TimeIn opens a new attendance record for the driver holding cardID
func (s *AttendanceService) TimeIn(ctx context.Context, cardID, deviceID string) (*models.Attendance, error) {
	driver, err := s.authorizeTap(ctx, cardID, deviceID)
	if err != nil {
		return nil, err
	}

	record := models.NewAttendance(driver, s.now())
	if err := s.records.CreateIfNoneOpen(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("✅ Time-in: driver %s (record %d)", driver.DriverID, record.ID)
	s.notifier.Publish(domain.EventTimeIn, map[string]interface{}{
		"driver_id":     driver.DriverID,
		"attendance_id": record.ID,
		"action":        "time_in",
		"status":        200,
	})
	return record, nil
}

// activeRecord picks the record a logout applies to: today's open record,
// else an open record left from a previous day
func (s *AttendanceService) activeRecord(ctx context.Context, driver *models.Driver) (*models.Attendance, error) {
	start, end := timeutil.DayBounds(s.now())
	today, err := s.records.FindForDay(ctx, driver.DriverID, start, end)
	if err != nil {
		return nil, fmt.Errorf("find today's attendance: %w", err)
	}
	if today != nil && today.IsOpen() {
		return today, nil
	}

	unfinished, err := s.records.FindUnfinished(ctx, driver.DriverID)
	if err != nil {
		return nil, fmt.Errorf("find unfinished attendance: %w", err)
	}
	if unfinished != nil {
		return unfinished, nil
	}
	return nil, domain.ErrNoActiveRecord
}

// CompleteLogout closes the driver's latest record once it is paid, then
// wakes the kiosk waiting on it if one still is
func (s *AttendanceService) CompleteLogout(ctx context.Context, subject domain.Subject, recordID uint, driverID string) (*models.Attendance, error) {
	if err := s.ensureVisible(ctx, subject, driverID); err != nil {
		return nil, err
	}

	completed, err := s.records.CompleteLatest(ctx, driverID, recordID, s.now())
	if err != nil {
		return nil, err
	}

	s.finishLogout(completed, "time_out")
	return completed, nil
}

// ManualTimeIn records a missed kiosk time-in
func (s *AttendanceService) ManualTimeIn(ctx context.Context, subject domain.Subject, driverID string) (*models.Attendance, error) {
	driver, err := s.drivers.GetByDriverID(ctx, subject, driverID)
	if err != nil {
		return nil, fmt.Errorf("find driver: %w", err)
	}
	if driver == nil {
		return nil, domain.ErrDriverNotFound
	}

	now := s.now()
	start, end := timeutil.DayBounds(now)
	record := models.NewAttendance(driver, now)
	if err := s.records.CreateIfDayFree(ctx, record, start, end); err != nil {
		return nil, err
	}

	log.Printf("✅ Manual time-in by admin %d: driver %s (record %d)", subject.ID, driverID, record.ID)
	s.notifier.Publish(domain.EventTimeIn, map[string]interface{}{
		"driver_id":     driver.DriverID,
		"attendance_id": record.ID,
		"action":        "manual_time_in",
		"status":        200,
	})
	return record, nil
}

// ManualTimeOut records a missed kiosk time-out. Payment gating still applies.
func (s *AttendanceService) ManualTimeOut(ctx context.Context, subject domain.Subject, driverID string) (*models.Attendance, error) {
	if err := s.ensureVisible(ctx, subject, driverID); err != nil {
		return nil, err
	}

	open, err := s.records.FindUnfinished(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("find unfinished attendance: %w", err)
	}
	if open == nil {
		return nil, domain.ErrNoActiveRecord
	}

	completed, err := s.records.CompleteLatest(ctx, driverID, open.ID, s.now())
	if err != nil {
		return nil, err
	}

	s.finishLogout(completed, "manual_time_out")
	return completed, nil
}

func (s *AttendanceService) finishLogout(record *models.Attendance, action string) {
	log.Printf("✅ Time-out: driver %s (record %d, %s)", record.DriverID, record.ID, action)
	s.notifier.Publish(domain.EventLogoutCompleted, map[string]interface{}{
		"driver_id":     record.DriverID,
		"attendance_id": record.ID,
		"full_name":     record.FullName,
		"action":        action,
	})
	s.waiters.ResolveWaiter(record.DriverID, record.ID, record.FullName)
}

func (s *AttendanceService) ensureVisible(ctx context.Context, subject domain.Subject, driverID string) error {
	driver, err := s.drivers.GetByDriverID(ctx, subject, driverID)
	if err != nil {
		return fmt.Errorf("find driver: %w", err)
	}
	if driver == nil {
		return domain.ErrDriverNotFound
	}
	return nil
}

// AttendanceData lists today's and still-open records visible to subject
func (s *AttendanceService) AttendanceData(ctx context.Context, subject domain.Subject, params *pagination.Params) ([]*models.Attendance, int64, error) {
	start, end := timeutil.DayBounds(s.now())
	records, total, err := s.records.ListActive(ctx, subject, start, end, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	return records, total, nil
}

// PendingLogout returns the driver's open, paid record awaiting logout approval
func (s *AttendanceService) PendingLogout(ctx context.Context, subject domain.Subject, driverID string) (*models.Attendance, error) {
	record, err := s.records.LatestPaidOpen(ctx, subject, driverID)
	if err != nil {
		return nil, fmt.Errorf("find pending logout: %w", err)
	}
	if record == nil {
		return nil, domain.ErrAttendanceNotFound
	}
	return record, nil
}
