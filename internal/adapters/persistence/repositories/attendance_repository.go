package repositories

import (
	"context"
	"errors"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const openRecord = "attendances.time_in IS NOT NULL AND attendances.time_out IS NULL"

// attendanceRepository implements AttendanceRepository interface
type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func firstRecord(q *gorm.DB) (*models.Attendance, error) {
	var record models.Attendance
	err := q.First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindUnfinished returns the driver's newest open record of any day
func (r *attendanceRepository) FindUnfinished(ctx context.Context, driverID string) (*models.Attendance, error) {
	return firstRecord(r.db.WithContext(ctx).
		Where("attendances.driver_id = ?", driverID).
		Where(openRecord).
		Order("attendances.created_at DESC").
		Order("attendances.id DESC"))
}

// FindForDay returns the driver's newest record created in [dayStart, dayEnd)
func (r *attendanceRepository) FindForDay(ctx context.Context, driverID string, dayStart, dayEnd time.Time) (*models.Attendance, error) {
	return firstRecord(r.db.WithContext(ctx).
		Where("attendances.driver_id = ?", driverID).
		Where("attendances.created_at >= ? AND attendances.created_at < ?", dayStart, dayEnd).
		Order("attendances.created_at DESC").
		Order("attendances.id DESC"))
}

// GetByID gets a record by ID
func (r *attendanceRepository) GetByID(ctx context.Context, id uint) (*models.Attendance, error) {
	return firstRecord(r.db.WithContext(ctx).Where("attendances.id = ?", id))
}

// lockDriver serializes attendance writes of one driver for the rest of tx
func lockDriver(tx *gorm.DB, driverID string) error {
	var driver models.Driver
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("driver_id = ?", driverID).
		First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrDriverNotFound
	}
	return err
}

func countOpen(tx *gorm.DB, driverID string) (int64, error) {
	var count int64
	err := tx.Model(&models.Attendance{}).
		Where("attendances.driver_id = ?", driverID).
		Where(openRecord).
		Count(&count).Error
	return count, err
}

// CreateIfNoneOpen inserts record unless the driver already has an open one
func (r *attendanceRepository) CreateIfNoneOpen(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDriver(tx, record.DriverID); err != nil {
			return err
		}

		open, err := countOpen(tx, record.DriverID)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrAlreadyIn
		}

		return tx.Omit(clause.Associations).Create(record).Error
	})
}

// CreateIfDayFree inserts record unless the driver has an open record or
// already completed a session within [dayStart, dayEnd)
func (r *attendanceRepository) CreateIfDayFree(ctx context.Context, record *models.Attendance, dayStart, dayEnd time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDriver(tx, record.DriverID); err != nil {
			return err
		}

		open, err := countOpen(tx, record.DriverID)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrAttendanceConflict
		}

		var done int64
		err = tx.Model(&models.Attendance{}).
			Where("attendances.driver_id = ?", record.DriverID).
			Where("attendances.created_at >= ? AND attendances.created_at < ?", dayStart, dayEnd).
			Where("attendances.time_out IS NOT NULL").
			Count(&done).Error
		if err != nil {
			return err
		}
		if done > 0 {
			return domain.ErrAttendanceConflict
		}

		return tx.Omit(clause.Associations).Create(record).Error
	})
}

// CompleteLatest closes the driver's latest record. The record must be open
// and paid when the write happens; recordID 0 accepts whichever record is latest.
func (r *attendanceRepository) CompleteLatest(ctx context.Context, driverID string, recordID uint, now time.Time) (*models.Attendance, error) {
	var completed *models.Attendance

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := firstRecord(tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attendances.driver_id = ?", driverID).
			Order("attendances.created_at DESC").
			Order("attendances.id DESC"))
		if err != nil {
			return err
		}
		if latest == nil || !latest.IsPaid() || !latest.IsOpen() {
			return domain.ErrNotYetPaid
		}
		if recordID != 0 && latest.ID != recordID {
			return domain.ErrRecordNotLatest
		}

		result := tx.Model(&models.Attendance{}).
			Where("id = ?", latest.ID).
			Where("time_out IS NULL").
			Where("paid = ?", domain.PaymentPaid).
			Updates(map[string]interface{}{
				"time_out":      now,
				"driver_status": domain.DriverStatusOut,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotYetPaid
		}

		latest.TimeOut = &now
		latest.DriverStatus = domain.DriverStatusOut
		completed = latest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// ListActive pages the dashboard view: records created in the day or still open
func (r *attendanceRepository) ListActive(ctx context.Context, subject domain.Subject, dayStart, dayEnd time.Time, params *pagination.Params) ([]*models.Attendance, int64, error) {
	active := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Attendance{}).
			Scopes(AttendanceScope(subject)).
			Where("((attendances.created_at >= ? AND attendances.created_at < ?) OR ("+openRecord+"))", dayStart, dayEnd)
	}

	var total int64
	if err := active().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params.Clamp(total)

	var records []*models.Attendance
	err := active().
		Preload("Driver").
		Order("attendances.created_at DESC").
		Order("attendances.id DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// LatestPaidOpen returns the driver's newest open, paid record
func (r *attendanceRepository) LatestPaidOpen(ctx context.Context, subject domain.Subject, driverID string) (*models.Attendance, error) {
	return firstRecord(r.db.WithContext(ctx).
		Scopes(AttendanceScope(subject)).
		Preload("Driver").
		Where("attendances.driver_id = ?", driverID).
		Where("attendances.time_out IS NULL").
		Where("attendances.paid = ?", domain.PaymentPaid).
		Order("attendances.created_at DESC").
		Order("attendances.id DESC"))
}

// ListUnpaidOpen lists the day's open records of live drivers that still owe dues
func (r *attendanceRepository) ListUnpaidOpen(ctx context.Context, dayStart, dayEnd time.Time) ([]*models.Attendance, error) {
	var records []*models.Attendance
	err := r.db.WithContext(ctx).
		Scopes(AttendanceScope(domain.Subject{Role: domain.RoleSuperAdmin})).
		Where(openRecord).
		Where("attendances.created_at >= ? AND attendances.created_at < ?", dayStart, dayEnd).
		Where("attendances.paid <> ?", domain.PaymentPaid).
		Order("attendances.created_at ASC").
		Find(&records).Error
	return records, err
}

// ApplyPayment locks one record inside the subject's tenancy, lets apply
// mutate the dues columns and persists them in the same transaction
func (r *attendanceRepository) ApplyPayment(ctx context.Context, subject domain.Subject, id uint, driverID string, apply func(*models.Attendance) error) (*models.Attendance, error) {
	var updated *models.Attendance

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := firstRecord(tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(AttendanceScope(subject)).
			Where("attendances.id = ?", id).
			Where("attendances.driver_id = ?", driverID))
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrAttendanceNotFound
		}

		if err := apply(record); err != nil {
			return err
		}

		err = tx.Model(record).
			Select("butaw", "boundary", "balance", "paid").
			Updates(record).Error
		if err != nil {
			return err
		}

		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CountDay tallies the subject's records created in [dayStart, dayEnd)
func (r *attendanceRepository) CountDay(ctx context.Context, subject domain.Subject, dayStart, dayEnd time.Time) (*DayCounts, error) {
	day := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Attendance{}).
			Scopes(AttendanceScope(subject)).
			Where("attendances.created_at >= ? AND attendances.created_at < ?", dayStart, dayEnd)
	}

	counts := &DayCounts{}
	if err := day().Count(&counts.Attendance).Error; err != nil {
		return nil, err
	}
	if err := day().Where("attendances.butaw > 0").Count(&counts.Butaw).Error; err != nil {
		return nil, err
	}
	if err := day().Where("attendances.boundary > 0").Count(&counts.Boundary).Error; err != nil {
		return nil, err
	}
	if err := day().Where("attendances.paid = ?", domain.PaymentPaid).Count(&counts.Paid).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// ListActiveAll is ListActive without paging
func (r *attendanceRepository) ListActiveAll(ctx context.Context, subject domain.Subject, dayStart, dayEnd time.Time) ([]*models.Attendance, error) {
	var records []*models.Attendance
	err := r.db.WithContext(ctx).
		Scopes(AttendanceScope(subject)).
		Where("((attendances.created_at >= ? AND attendances.created_at < ?) OR ("+openRecord+"))", dayStart, dayEnd).
		Order("attendances.created_at DESC").
		Order("attendances.id DESC").
		Find(&records).Error
	return records, err
}

// ListUnpaidByDriver lists every record the driver still owes dues on, newest first
func (r *attendanceRepository) ListUnpaidByDriver(ctx context.Context, driverID string) ([]*models.Attendance, error) {
	var records []*models.Attendance
	err := r.db.WithContext(ctx).
		Where("attendances.driver_id = ?", driverID).
		Where("attendances.paid <> ?", domain.PaymentPaid).
		Order("attendances.created_at DESC").
		Order("attendances.id DESC").
		Find(&records).Error
	return records, err
}
