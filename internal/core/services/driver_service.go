package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
)

// DriverService handles driver onboarding and maintenance
type DriverService struct {
	drivers  repositories.DriverRepository
	notifier EventNotifier
}

// NewDriverService creates a new driver service
func NewDriverService(drivers repositories.DriverRepository, notifier EventNotifier) *DriverService {
	return &DriverService{drivers: drivers, notifier: notifier}
}

// CreateDriverInput represents create driver input
type CreateDriverInput struct {
	DriverID  string `json:"driver_id"`
	DevID     string `json:"dev_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Contact   string `json:"contact"`
	PlateNo   string `json:"plate_no"`
}

// UpdateDriverInput represents a partial driver update
type UpdateDriverInput struct {
	DevID         *string `json:"dev_id"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Contact       *string `json:"contact"`
	PlateNo       *string `json:"plate_no"`
	DevStatusMode *string `json:"dev_status_mode"`
}

// Create onboards a driver in Register mode, owned by the creating admin
func (s *DriverService) Create(ctx context.Context, subject domain.Subject, input *CreateDriverInput) (*models.Driver, error) {
	input.DriverID = strings.TrimSpace(input.DriverID)
	input.DevID = strings.TrimSpace(input.DevID)
	if input.DriverID == "" || input.DevID == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.drivers.Exists(ctx, input.DriverID, input.DevID)
	if err != nil {
		return nil, fmt.Errorf("check driver: %w", err)
	}
	if exists {
		return nil, domain.ErrDriverAlreadyExists
	}

	driver := &models.Driver{
		DriverID:      input.DriverID,
		DevID:         input.DevID,
		DevStatusMode: domain.DeviceModeRegister,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		FullName:      fullName(input.FirstName, input.LastName),
		Contact:       input.Contact,
		PlateNo:       input.PlateNo,
	}
	if err := s.drivers.Create(ctx, driver, subject.ID); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}

	log.Printf("✅ Driver created: %s on device %s", driver.DriverID, driver.DevID)
	s.publish(driver.DriverID, "created")
	return driver, nil
}

// List pages the subject's drivers
func (s *DriverService) List(ctx context.Context, subject domain.Subject, offset, limit int) ([]*models.Driver, int64, error) {
	return s.drivers.List(ctx, subject, offset, limit)
}

// Get returns one driver visible to subject
func (s *DriverService) Get(ctx context.Context, subject domain.Subject, driverID string) (*models.Driver, error) {
	driver, err := s.drivers.GetByDriverID(ctx, subject, driverID)
	if err != nil {
		return nil, fmt.Errorf("find driver: %w", err)
	}
	if driver == nil {
		return nil, domain.ErrDriverNotFound
	}
	return driver, nil
}

// Update changes a driver's details. Returning to Register mode releases the card.
func (s *DriverService) Update(ctx context.Context, subject domain.Subject, driverID string, input *UpdateDriverInput) (*models.Driver, error) {
	driver, err := s.Get(ctx, subject, driverID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.DevID != nil {
		devID := strings.TrimSpace(*input.DevID)
		if devID == "" {
			return nil, domain.ErrInvalidInput
		}
		if devID != driver.DevID {
			taken, err := s.drivers.GetByDevID(ctx, devID)
			if err != nil {
				return nil, fmt.Errorf("find driver by device: %w", err)
			}
			if taken != nil && taken.ID != driver.ID {
				return nil, domain.ErrDriverAlreadyExists
			}
			fields["dev_id"] = devID
		}
	}

	first, last := driver.FirstName, driver.LastName
	if input.FirstName != nil {
		first = *input.FirstName
		fields["first_name"] = first
	}
	if input.LastName != nil {
		last = *input.LastName
		fields["last_name"] = last
	}
	if input.FirstName != nil || input.LastName != nil {
		fields["full_name"] = fullName(first, last)
	}
	if input.Contact != nil {
		fields["contact"] = *input.Contact
	}
	if input.PlateNo != nil {
		fields["plate_no"] = *input.PlateNo
	}

	if input.DevStatusMode != nil {
		switch *input.DevStatusMode {
		case domain.DeviceModeRegister:
			fields["dev_status_mode"] = domain.DeviceModeRegister
			fields["card_id"] = nil
		case domain.DeviceModeAttendance:
			if driver.CardID == nil {
				return nil, domain.ErrInvalidDeviceMode
			}
			fields["dev_status_mode"] = domain.DeviceModeAttendance
		default:
			return nil, domain.ErrInvalidDeviceMode
		}
	}

	if len(fields) == 0 {
		return driver, nil
	}
	if err := s.drivers.Update(ctx, driver, fields); err != nil {
		return nil, fmt.Errorf("update driver: %w", err)
	}

	s.publish(driver.DriverID, "updated")
	return s.Get(ctx, subject, driverID)
}

// Delete soft-deletes a driver and frees its card
func (s *DriverService) Delete(ctx context.Context, subject domain.Subject, driverID string) error {
	driver, err := s.Get(ctx, subject, driverID)
	if err != nil {
		return err
	}
	if err := s.drivers.SoftDelete(ctx, driver); err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}

	log.Printf("🗑️ Driver deleted: %s", driver.DriverID)
	s.publish(driver.DriverID, "deleted")
	return nil
}

func (s *DriverService) publish(driverID, action string) {
	s.notifier.Publish(domain.EventDriversUpdated, map[string]interface{}{
		"driver_id": driverID,
		"action":    action,
	})
}

func fullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
