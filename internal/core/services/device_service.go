package services

import (
	"context"
	"fmt"
	"log"

	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
)

// DeviceService handles kiosk card registration
type DeviceService struct {
	drivers  repositories.DriverRepository
	notifier EventNotifier
}

// NewDeviceService creates a new device service
func NewDeviceService(drivers repositories.DriverRepository, notifier EventNotifier) *DeviceService {
	return &DeviceService{drivers: drivers, notifier: notifier}
}

// NextDeviceToRegister returns the device id of the oldest driver still
// waiting for a card, or "" when none is
func (s *DeviceService) NextDeviceToRegister(ctx context.Context) (string, error) {
	driver, err := s.drivers.OldestAwaitingCard(ctx)
	if err != nil {
		return "", fmt.Errorf("find device awaiting card: %w", err)
	}
	if driver == nil {
		return "", nil
	}
	return driver.DevID, nil
}

// RegisterCard binds cardID to the driver assigned to deviceID
func (s *DeviceService) RegisterCard(ctx context.Context, cardID, deviceID string) error {
	driver, err := s.drivers.GetByDevID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("find driver by device: %w", err)
	}
	if driver == nil {
		return domain.ErrDeviceNotFound
	}

	if err := s.drivers.AssignCard(ctx, driver.ID, cardID); err != nil {
		return err
	}

	log.Printf("✅ Card registered for driver %s on device %s", driver.DriverID, deviceID)
	s.notifier.Publish(domain.EventCardUpdated, map[string]interface{}{
		"driver_id": driver.DriverID,
		"action":    "card_dev_mode_updated",
	})
	return nil
}
