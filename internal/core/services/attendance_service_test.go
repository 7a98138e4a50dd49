package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	at := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	open := &models.Attendance{TimeIn: &at, Paid: domain.PaymentNotPaid}
	openPaid := &models.Attendance{TimeIn: &at, Paid: domain.PaymentPaid}
	done := &models.Attendance{TimeIn: &at, TimeOut: &at, Paid: domain.PaymentPaid}
	broken := &models.Attendance{}

	tests := []struct {
		name       string
		unfinished *models.Attendance
		today      *models.Attendance
		want       string
	}{
		{"open record from an earlier day", open, nil, domain.StatusUnfinish},
		{"no records", nil, nil, domain.StatusNoIn},
		{"open unpaid today", open, open, domain.StatusInNoPaid},
		{"open paid today", openPaid, openPaid, domain.StatusInPaid},
		{"completed today", nil, done, domain.StatusDone},
		{"completed today, older day still open", open, done, domain.StatusDone},
		{"record without time-in", nil, broken, domain.StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.unfinished, tt.today))
		})
	}
}

func TestStatusForUnknownCard(t *testing.T) {
	f := newFixture(t, time.Second)

	_, err := f.attendance.StatusFor(context.Background(), "NO-SUCH-CARD")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestTimeInValidationOrder(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")
	pending := f.addDriver(t, "DRV-2", "DEV-2", "")
	require.NoError(t, f.db.Model(pending).Update("card_id", "CARD-2").Error)

	_, err := f.attendance.TimeIn(ctx, "CARD-X", "DEV-1")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	// card known but device still registering, even on a foreign device
	_, err = f.attendance.TimeIn(ctx, "CARD-2", "DEV-1")
	assert.ErrorIs(t, err, domain.ErrDeviceNotRegistered)

	_, err = f.attendance.TimeIn(ctx, "CARD-1", "DEV-2")
	assert.ErrorIs(t, err, domain.ErrDeviceMismatch)

	assert.Zero(t, f.countRecords(t))
	assert.Empty(t, f.events.names())
}

func TestTimeInCreatesDefaultRecord(t *testing.T) {
	f := newFixture(t, time.Second)
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	record, err := f.attendance.TimeIn(context.Background(), "CARD-1", "DEV-1")
	require.NoError(t, err)

	assert.Equal(t, "Juan DRV-1", record.FullName)
	assert.Equal(t, domain.DriverStatusIn, record.DriverStatus)
	assert.Equal(t, domain.PaymentNotPaid, record.Paid)
	assert.Equal(t, 320.0, record.Balance)
	require.NotNil(t, record.TimeIn)
	assert.True(t, record.TimeIn.Equal(f.clock))
	assert.Nil(t, record.TimeOut)
	assert.Equal(t, []string{domain.EventTimeIn}, f.events.names())
}

func TestConcurrentTimeInSingleWinner(t *testing.T) {
	f := newFixture(t, time.Second)
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	const taps = 8
	errs := make([]error, taps)
	var wg sync.WaitGroup
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.attendance.TimeIn(context.Background(), "CARD-1", "DEV-1")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyIn)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1), f.countRecords(t))
}

func TestCompleteLogoutRequiresPayment(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	record, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)

	_, err = f.attendance.CompleteLogout(ctx, superAdmin, record.ID, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrNotYetPaid)

	stored, err := f.records.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TimeOut)
	assert.Equal(t, domain.DriverStatusIn, stored.DriverStatus)
}

func TestCompleteLogoutRejectsStaleRecord(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	record, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, record.ID, "DRV-1")
	require.NoError(t, err)

	_, err = f.attendance.CompleteLogout(ctx, superAdmin, record.ID+100, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrRecordNotLatest)
}

func TestAttendanceDayScenario(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	status := func() string {
		res, err := f.attendance.StatusFor(ctx, "CARD-1")
		require.NoError(t, err)
		assert.Equal(t, "DEV-1", res.DevID)
		return res.Status
	}

	assert.Equal(t, domain.StatusNoIn, status())

	record, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	_, err = f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyIn)
	assert.Equal(t, domain.StatusInNoPaid, status())

	// logout is refused before payment
	_, err = f.broker.Begin(ctx, "CARD-1", "DEV-1")
	assert.ErrorIs(t, err, domain.ErrNotPaid)
	assert.Zero(t, f.waiters.Len())

	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, record.ID, "DRV-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInPaid, status())

	// admin approves while the kiosk waits
	pending, err := f.broker.Begin(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, pending.Record.ID)

	approved := make(chan error, 1)
	go func() {
		_, err := f.attendance.CompleteLogout(ctx, superAdmin, record.ID, "DRV-1")
		approved <- err
	}()
	out := f.broker.Await(ctx, pending)
	require.NoError(t, <-approved)
	assert.Equal(t, LogoutCompleted, out.Result)
	assert.Equal(t, "Juan DRV-1", out.FullName)
	assert.Equal(t, domain.StatusDone, status())

	// a second shift the same day: nobody approves in time
	f.clock = f.clock.Add(2 * time.Hour)
	second, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, second.ID, "DRV-1")
	require.NoError(t, err)

	out, err = f.broker.RequestLogout(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	assert.Equal(t, LogoutTimedOut, out.Result)
	assert.Zero(t, f.waiters.Len())

	// late approval still closes the record; nobody is left to answer
	closed, err := f.attendance.CompleteLogout(ctx, superAdmin, second.ID, "DRV-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DriverStatusOut, closed.DriverStatus)
	assert.False(t, f.waiters.ResolveWaiter("DRV-1", second.ID, "Juan DRV-1"))

	assert.Contains(t, f.events.names(), domain.EventLogoutRequested)
	assert.Contains(t, f.events.names(), domain.EventLogoutCompleted)
}

func TestLogoutFallsBackToUnfinishedRecord(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	yesterday, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, yesterday.ID, "DRV-1")
	require.NoError(t, err)

	f.clock = f.clock.AddDate(0, 0, 1)
	res, err := f.attendance.StatusFor(ctx, "CARD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnfinish, res.Status)

	pending, err := f.broker.Begin(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	assert.Equal(t, yesterday.ID, pending.Record.ID)

	require.True(t, f.waiters.Release(pending.Waiter))
}

func TestRequestLogoutWithoutRecord(t *testing.T) {
	f := newFixture(t, time.Second)
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	_, err := f.broker.RequestLogout(context.Background(), "CARD-1", "DEV-1")
	assert.ErrorIs(t, err, domain.ErrNoActiveRecord)
}

func TestAwaitReleasesOnCancel(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")
	ctx := context.Background()

	record, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoth, record.ID, "DRV-1")
	require.NoError(t, err)

	pending, err := f.broker.Begin(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.broker.Pending())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	out := f.broker.Await(cancelled, pending)
	assert.Equal(t, LogoutAbandoned, out.Result)
	assert.Zero(t, f.broker.Pending())
}

func TestManualOverrides(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	record, err := f.attendance.ManualTimeIn(ctx, superAdmin, "DRV-1")
	require.NoError(t, err)

	_, err = f.attendance.ManualTimeIn(ctx, superAdmin, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrAttendanceConflict)

	_, err = f.attendance.ManualTimeOut(ctx, superAdmin, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrNotYetPaid)

	_, err = f.payments.Apply(ctx, superAdmin, PaymentButaw, record.ID, "DRV-1")
	require.NoError(t, err)
	_, err = f.payments.Apply(ctx, superAdmin, PaymentBoundary, record.ID, "DRV-1")
	require.NoError(t, err)

	closed, err := f.attendance.ManualTimeOut(ctx, superAdmin, "DRV-1")
	require.NoError(t, err)
	assert.NotNil(t, closed.TimeOut)

	// the day is finished
	_, err = f.attendance.ManualTimeIn(ctx, superAdmin, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrAttendanceConflict)

	_, err = f.attendance.ManualTimeOut(ctx, superAdmin, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrNoActiveRecord)
}

func TestTenantScopeHidesOtherAdminsDrivers(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	record, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)

	owner := domain.Subject{ID: 1, Role: domain.RoleAdmin}
	stranger := domain.Subject{ID: 2, Role: domain.RoleAdmin}

	_, err = f.payments.Apply(ctx, stranger, PaymentBoth, record.ID, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrAttendanceNotFound)
	_, err = f.attendance.CompleteLogout(ctx, stranger, record.ID, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrDriverNotFound)

	list, total, err := f.attendance.AttendanceData(ctx, stranger, pagination.New(1, AttendancePageSize))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	list, total, err = f.attendance.AttendanceData(ctx, owner, pagination.New(1, AttendancePageSize))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Driver)
	assert.Equal(t, "DEV-1", list[0].Driver.DevID)

	_, err = f.payments.Apply(ctx, owner, PaymentBoth, record.ID, "DRV-1")
	require.NoError(t, err)
	pending, err := f.attendance.PendingLogout(ctx, owner, "DRV-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, pending.ID)
}

func TestAttendanceDataClampsPage(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")
	_, err := f.attendance.TimeIn(ctx, "CARD-1", "DEV-1")
	require.NoError(t, err)

	params := pagination.New(5, AttendancePageSize)
	list, total, err := f.attendance.AttendanceData(ctx, superAdmin, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, params.Page)
}
