package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/timeutil"
)

// Transaction statuses
const (
	TransactionUnpaid = "Unpaid"
	TransactionClear  = "No Outstanding Balance"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	drivers repositories.DriverRepository
	records repositories.AttendanceRepository
	now     func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(drivers repositories.DriverRepository, records repositories.AttendanceRepository) *DashboardService {
	return &DashboardService{drivers: drivers, records: records, now: timeutil.Now}
}

// ============================================================
// Counters
// ============================================================

// DashboardSummary represents the dashboard counters of today
type DashboardSummary struct {
	TotalAttendance int64 `json:"total_attendance"`
	TotalDrivers    int64 `json:"total_drivers"`
	TotalButaw      int64 `json:"total_butaw"`
	TotalBoundary   int64 `json:"total_boundary"`
	TotalPaid       int64 `json:"total_paid"`
}

// Summary counts today's records and the live drivers visible to subject
func (s *DashboardService) Summary(ctx context.Context, subject domain.Subject) (*DashboardSummary, error) {
	start, end := timeutil.DayBounds(s.now())
	counts, err := s.records.CountDay(ctx, subject, start, end)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	drivers, err := s.drivers.Count(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}

	return &DashboardSummary{
		TotalAttendance: counts.Attendance,
		TotalDrivers:    drivers,
		TotalButaw:      counts.Butaw,
		TotalBoundary:   counts.Boundary,
		TotalPaid:       counts.Paid,
	}, nil
}

// ============================================================
// Analytics
// ============================================================

// AnalyticsRecord is an active record with its collected and owed totals
type AnalyticsRecord struct {
	*models.Attendance
	TotalPaid    float64 `json:"total_paid"`
	TotalBalance float64 `json:"total_balance"`
}

// Analytics lists today's and still-open records with per-record totals
func (s *DashboardService) Analytics(ctx context.Context, subject domain.Subject) ([]AnalyticsRecord, error) {
	start, end := timeutil.DayBounds(s.now())
	records, err := s.records.ListActiveAll(ctx, subject, start, end)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	out := make([]AnalyticsRecord, 0, len(records))
	for _, r := range records {
		out = append(out, AnalyticsRecord{
			Attendance:   r,
			TotalPaid:    r.Butaw + r.Boundary,
			TotalBalance: r.Balance,
		})
	}
	return out, nil
}

// ============================================================
// Transactions
// ============================================================

// TransactionDetail is one unpaid record of a driver
type TransactionDetail struct {
	Date     time.Time `json:"date"`
	Butaw    float64   `json:"butaw"`
	Boundary float64   `json:"boundary"`
	Balance  float64   `json:"balance"`
	Paid     string    `json:"paid"`
}

// TransactionSummary represents what a driver still owes
type TransactionSummary struct {
	DriverID      string              `json:"driver_id"`
	FullName      string              `json:"full_name"`
	Contact       string              `json:"contact"`
	TotalButaw    float64             `json:"total_butaw"`
	TotalBoundary float64             `json:"total_boundary"`
	TotalBalance  float64             `json:"total_balance"`
	Amount        float64             `json:"amount"`
	Status        string              `json:"status"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Details       []TransactionDetail `json:"details"`
}

// Transaction sums the driver's unpaid records of every day
func (s *DashboardService) Transaction(ctx context.Context, subject domain.Subject, driverID string) (*TransactionSummary, error) {
	driver, err := s.drivers.GetByDriverID(ctx, subject, driverID)
	if err != nil {
		return nil, fmt.Errorf("find driver: %w", err)
	}
	if driver == nil {
		return nil, domain.ErrDriverNotFound
	}

	unpaid, err := s.records.ListUnpaidByDriver(ctx, driver.DriverID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid attendance: %w", err)
	}

	summary := &TransactionSummary{
		DriverID:    driver.DriverID,
		FullName:    driver.FullName,
		Contact:     driver.Contact,
		Status:      TransactionClear,
		GeneratedAt: s.now(),
		Details:     make([]TransactionDetail, 0, len(unpaid)),
	}
	for _, r := range unpaid {
		summary.TotalButaw += r.Butaw
		summary.TotalBoundary += r.Boundary
		summary.TotalBalance += r.Balance
		summary.Details = append(summary.Details, TransactionDetail{
			Date:     r.CreatedAt,
			Butaw:    r.Butaw,
			Boundary: r.Boundary,
			Balance:  r.Balance,
			Paid:     r.Paid,
		})
	}
	if len(unpaid) > 0 {
		summary.Status = TransactionUnpaid
	}
	summary.Amount = cents(summary.TotalButaw + summary.TotalBoundary + summary.TotalBalance)
	return summary, nil
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
