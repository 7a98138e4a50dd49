package services

import (
	"context"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
)

// PaymentKind selects which dues an administrator is recording
type PaymentKind string

const (
	PaymentButaw    PaymentKind = "butaw"
	PaymentBoundary PaymentKind = "boundary"
	PaymentBoth     PaymentKind = "both"
)

// PaymentService records daily dues against attendance records
type PaymentService struct {
	records  repositories.AttendanceRepository
	notifier EventNotifier
}

// NewPaymentService creates a new payment service
func NewPaymentService(records repositories.AttendanceRepository, notifier EventNotifier) *PaymentService {
	return &PaymentService{records: records, notifier: notifier}
}

// Apply records a payment of kind on one attendance record
func (s *PaymentService) Apply(ctx context.Context, subject domain.Subject, kind PaymentKind, id uint, driverID string) (*models.Attendance, error) {
	var settle func(*models.Attendance) error
	var event string

	switch kind {
	case PaymentButaw:
		settle, event = SettleButaw, domain.EventPaymentButaw
	case PaymentBoundary:
		settle, event = SettleBoundary, domain.EventPaymentBoundary
	case PaymentBoth:
		settle, event = SettleBoth, domain.EventBothPayments
	default:
		return nil, domain.ErrInvalidInput
	}

	record, err := s.records.ApplyPayment(ctx, subject, id, driverID, settle)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(event, map[string]interface{}{
		"driver_id":     record.DriverID,
		"attendance_id": record.ID,
		"paid":          record.Paid,
		"status":        200,
	})
	return record, nil
}

func unpaid(r *models.Attendance) bool {
	return r.Paid != domain.PaymentPaid
}

// SettleButaw records the butaw fee. Paying it after the boundary settles the day.
func SettleButaw(r *models.Attendance) error {
	switch {
	case unpaid(r) && r.Butaw == 0 && r.Boundary == 0:
		r.Butaw = domain.ButawFee
		r.Balance -= domain.ButawFee
	case unpaid(r) && r.Butaw == 0 && r.Boundary == domain.BoundaryFee:
		r.Butaw = domain.ButawFee
		r.Balance = 0
		r.Paid = domain.PaymentPaid
	default:
		return domain.ErrPaymentNotApplicable
	}
	return nil
}

// SettleBoundary records the boundary fee. Paying it after butaw settles the day.
func SettleBoundary(r *models.Attendance) error {
	switch {
	case unpaid(r) && r.Butaw == 0 && r.Boundary == 0:
		r.Boundary = domain.BoundaryFee
		r.Balance -= domain.BoundaryFee
	case unpaid(r) && r.Boundary == 0 && r.Butaw == domain.ButawFee:
		r.Boundary = domain.BoundaryFee
		r.Balance = 0
		r.Paid = domain.PaymentPaid
	default:
		return domain.ErrPaymentNotApplicable
	}
	return nil
}

// SettleBoth records both fees on an untouched record
func SettleBoth(r *models.Attendance) error {
	if !unpaid(r) || r.Butaw != 0 || r.Boundary != 0 {
		return domain.ErrPaymentNotApplicable
	}
	r.Butaw = domain.ButawFee
	r.Boundary = domain.BoundaryFee
	r.Balance -= domain.DailyBalance
	r.Paid = domain.PaymentPaid
	return nil
}
