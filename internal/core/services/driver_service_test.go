package services

import (
	"context"
	"testing"
	"time"

	"rfid-attendance/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDriverCreateStartsInRegisterMode(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := NewDriverService(f.drivers, f.events)
	ctx := context.Background()

	d, err := svc.Create(ctx, superAdmin, &CreateDriverInput{DriverID: " DRV-1 ", DevID: "DEV-1", FirstName: "Juan", LastName: "Dela Cruz"})
	require.NoError(t, err)
	assert.Equal(t, "DRV-1", d.DriverID)
	assert.Equal(t, domain.DeviceModeRegister, d.DevStatusMode)
	assert.Equal(t, "Juan Dela Cruz", d.FullName)
	assert.Nil(t, d.CardID)

	_, err = svc.Create(ctx, superAdmin, &CreateDriverInput{DriverID: "DRV-2", DevID: "DEV-1"})
	assert.ErrorIs(t, err, domain.ErrDriverAlreadyExists)

	_, err = svc.Create(ctx, superAdmin, &CreateDriverInput{DriverID: "DRV-3"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, []string{domain.EventDriversUpdated}, f.events.names())
}

func TestDriverUpdateKeepsOwnDevice(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := NewDriverService(f.drivers, f.events)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "")
	f.addDriver(t, "DRV-2", "DEV-2", "")

	d, err := svc.Update(ctx, superAdmin, "DRV-1", &UpdateDriverInput{DevID: strPtr(" DEV-1 "), PlateNo: strPtr("ABC-123")})
	require.NoError(t, err)
	assert.Equal(t, "DEV-1", d.DevID)
	assert.Equal(t, "ABC-123", d.PlateNo)

	_, err = svc.Update(ctx, superAdmin, "DRV-1", &UpdateDriverInput{DevID: strPtr("DEV-2")})
	assert.ErrorIs(t, err, domain.ErrDriverAlreadyExists)

	_, err = svc.Update(ctx, superAdmin, "DRV-1", &UpdateDriverInput{DevID: strPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	d, err = svc.Update(ctx, superAdmin, "DRV-1", &UpdateDriverInput{DevID: strPtr(" DEV-9 ")})
	require.NoError(t, err)
	assert.Equal(t, "DEV-9", d.DevID)
}

func TestDriverUpdateModeSwitch(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := NewDriverService(f.drivers, f.events)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")
	f.addDriver(t, "DRV-2", "DEV-2", "")

	d, err := svc.Update(ctx, superAdmin, "DRV-1", &UpdateDriverInput{DevStatusMode: strPtr(domain.DeviceModeRegister)})
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceModeRegister, d.DevStatusMode)
	assert.Nil(t, d.CardID)

	holder, err := f.drivers.GetByCardID(ctx, "CARD-1")
	require.NoError(t, err)
	assert.Nil(t, holder, "card is released for re-issue")

	_, err = svc.Update(ctx, superAdmin, "DRV-2", &UpdateDriverInput{DevStatusMode: strPtr(domain.DeviceModeAttendance)})
	assert.ErrorIs(t, err, domain.ErrInvalidDeviceMode)

	_, err = svc.Update(ctx, superAdmin, "DRV-2", &UpdateDriverInput{DevStatusMode: strPtr("Sleep")})
	assert.ErrorIs(t, err, domain.ErrInvalidDeviceMode)
}

func TestDriverDeleteIsTenantScoped(t *testing.T) {
	f := newFixture(t, time.Second)
	svc := NewDriverService(f.drivers, f.events)
	ctx := context.Background()
	f.addDriver(t, "DRV-1", "DEV-1", "CARD-1")

	stranger := domain.Subject{ID: 7, Role: domain.RoleAdmin}
	assert.ErrorIs(t, svc.Delete(ctx, stranger, "DRV-1"), domain.ErrDriverNotFound)

	require.NoError(t, svc.Delete(ctx, superAdmin, "DRV-1"))
	_, err := svc.Get(ctx, superAdmin, "DRV-1")
	assert.ErrorIs(t, err, domain.ErrDriverNotFound)
}
