package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/timeutil"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var superAdmin = domain.Subject{ID: 1, Role: domain.RoleSuperAdmin}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "attendance.db")), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  timeutil.Now,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// fixture wires the attendance services over a throwaway database
type fixture struct {
	db         *gorm.DB
	drivers    repositories.DriverRepository
	records    repositories.AttendanceRepository
	waiters    *WaiterRegistry
	events     *recordingNotifier
	attendance *AttendanceService
	broker     *LogoutBroker
	payments   *PaymentService
	clock      time.Time
}

func newFixture(t *testing.T, wait time.Duration) *fixture {
	t.Helper()

	db := newTestDB(t)
	f := &fixture{
		db:      db,
		drivers: repositories.NewDriverRepository(db),
		records: repositories.NewAttendanceRepository(db),
		waiters: NewWaiterRegistry(),
		events:  &recordingNotifier{},
		clock:   time.Date(2024, 3, 10, 8, 0, 0, 0, timeutil.Location()),
	}
	f.attendance = NewAttendanceService(f.drivers, f.records, f.waiters, f.events)
	f.attendance.now = func() time.Time { return f.clock }
	f.broker = NewLogoutBroker(f.attendance, f.waiters, f.events, wait)
	f.payments = NewPaymentService(f.records, f.events)
	return f
}

// addDriver onboards a driver owned by admin 1 and, if cardID is set, registers the card
func (f *fixture) addDriver(t *testing.T, driverID, devID, cardID string) *models.Driver {
	t.Helper()
	ctx := context.Background()

	d := &models.Driver{
		DriverID:      driverID,
		DevID:         devID,
		DevStatusMode: domain.DeviceModeRegister,
		FirstName:     "Juan",
		LastName:      driverID,
		FullName:      "Juan " + driverID,
	}
	require.NoError(t, f.drivers.Create(ctx, d, 1))
	if cardID != "" {
		require.NoError(t, f.drivers.AssignCard(ctx, d.ID, cardID))
	}
	return d
}

func (f *fixture) countRecords(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Attendance{}).Count(&n).Error)
	return n
}
