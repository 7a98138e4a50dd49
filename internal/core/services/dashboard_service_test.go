package services

import (
	"context"
	"testing"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLedger leaves DRV-1 open and part paid since yesterday, DRV-2 paid in
// full today, DRV-3 owing butaw today and DRV-9, owned by admin 2, freshly in.
func seedLedger(t *testing.T, f *fixture) *DashboardService {
	t.Helper()
	ctx := context.Background()

	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")
	f.addDriver(t, "DRV-2", "DEV-2", "CARD-2")
	f.addDriver(t, "DRV-3", "DEV-3", "CARD-3")
	other := &models.Driver{DriverID: "DRV-9", DevID: "DEV-9", DevStatusMode: domain.DeviceModeRegister, FullName: "Pedro Santos"}
	require.NoError(t, f.drivers.Create(ctx, other, 2))
	require.NoError(t, f.drivers.AssignCard(ctx, other.ID, "CARD-9"))

	today := f.clock
	f.clock = today.AddDate(0, 0, -1)
	stale, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentButaw, stale.ID, "DRV-1")
	require.NoError(t, err)
	f.clock = today

	for i, tap := range [][2]string{{"CARD-2", "DEV-2"}, {"CARD-3", "DEV-3"}, {"CARD-9", "DEV-9"}} {
		f.clock = today.Add(time.Duration(i) * time.Minute)
		_, err := f.attendance.TimeIn(ctx, tap[0], tap[1])
		require.NoError(t, err)
	}
	f.clock = today.Add(time.Hour)

	paid, err := f.records.FindUnfinished(ctx, "DRV-2")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, paid.ID, "DRV-2")
	require.NoError(t, err)

	owing, err := f.records.FindUnfinished(ctx, "DRV-3")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoundary, owing.ID, "DRV-3")
	require.NoError(t, err)

	svc := NewDashboardService(f.drivers, f.records)
	svc.now = func() time.Time { return f.clock }
	return svc
}

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := seedLedger(t, f)
	ctx := context.Background()

	all, err := svc.Summary(ctx, superAdmin)
	require.NoError(t, err)
	assert.Equal(t, &DashboardSummary{
		TotalAttendance: 3,
		TotalDrivers:    4,
		TotalButaw:      1,
		TotalBoundary:   2,
		TotalPaid:       1,
	}, all)

	mine, err := svc.Summary(ctx, domain.Subject{ID: 2, Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, &DashboardSummary{TotalAttendance: 1, TotalDrivers: 1}, mine)
}

func TestDashboardAnalytics(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := seedLedger(t, f)
	ctx := context.Background()

	rows, err := svc.Analytics(ctx, superAdmin)
	require.NoError(t, err)
	require.Len(t, rows, 4, "today's records plus yesterday's open one")

	last := rows[len(rows)-1]
	assert.Equal(t, "DRV-1", last.DriverID)
	assert.Equal(t, 20.0, last.TotalPaid)
	assert.Equal(t, 300.0, last.TotalBalance)

	assert.Equal(t, "DRV-9", rows[0].DriverID)
	assert.Equal(t, 0.0, rows[0].TotalPaid)
	assert.Equal(t, domain.DailyBalance, rows[0].TotalBalance)

	mine, err := svc.Analytics(ctx, domain.Subject{ID: 2, Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "DRV-9", mine[0].DriverID)
}

func TestDashboardTransaction(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := seedLedger(t, f)
	ctx := context.Background()

	stale, err := svc.Transaction(ctx, superAdmin, "DRV-1")
	require.NoError(t, err)
	assert.Equal(t, TransactionUnpaid, stale.Status)
	assert.Equal(t, "Juan DRV-1", stale.FullName)
	assert.Equal(t, 20.0, stale.TotalButaw)
	assert.Equal(t, 300.0, stale.TotalBalance)
	assert.Equal(t, 320.0, stale.Amount)
	require.Len(t, stale.Details, 1)
	assert.Equal(t, domain.PaymentNotPaid, stale.Details[0].Paid)

	owing, err := svc.Transaction(ctx, superAdmin, "DRV-3")
	require.NoError(t, err)
	assert.Equal(t, 300.0, owing.TotalBoundary)
	assert.Equal(t, 20.0, owing.TotalBalance)
	assert.Equal(t, 320.0, owing.Amount)

	settled, err := svc.Transaction(ctx, superAdmin, "DRV-2")
	require.NoError(t, err)
	assert.Equal(t, TransactionClear, settled.Status)
	assert.Zero(t, settled.Amount)
	assert.Empty(t, settled.Details)

	stranger := domain.Subject{ID: 3, Role: domain.RoleAdmin}
	_, err = svc.Transaction(ctx, stranger, "DRV-9")
	assert.ErrorIs(t, err, domain.ErrDriverNotFound)

	_, err = svc.Transaction(ctx, superAdmin, "DRV-404")
	assert.ErrorIs(t, err, domain.ErrDriverNotFound)
}
