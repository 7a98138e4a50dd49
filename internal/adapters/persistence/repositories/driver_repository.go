package repositories

import (
	"context"
	"errors"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"

	"gorm.io/gorm"
)

// driverRepository implements DriverRepository interface
type driverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

// first runs q and maps a missing row to (nil, nil)
func first(q *gorm.DB) (*models.Driver, error) {
	var driver models.Driver
	err := q.First(&driver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

// GetByCardID finds the live driver holding a card
func (r *driverRepository) GetByCardID(ctx context.Context, cardID string) (*models.Driver, error) {
	return first(r.db.WithContext(ctx).Where("card_id = ?", cardID))
}

// GetByDevID finds the live driver assigned to a kiosk device
func (r *driverRepository) GetByDevID(ctx context.Context, devID string) (*models.Driver, error) {
	return first(r.db.WithContext(ctx).Where("dev_id = ?", devID))
}

// OldestAwaitingCard returns the earliest onboarded driver still waiting for a card
func (r *driverRepository) OldestAwaitingCard(ctx context.Context) (*models.Driver, error) {
	return first(r.db.WithContext(ctx).
		Where("card_id IS NULL").
		Where("dev_status_mode = ?", domain.DeviceModeRegister).
		Order("created_at ASC").
		Order("id ASC"))
}

// AssignCard binds a card to a driver and switches the device to attendance mode
func (r *driverRepository) AssignCard(ctx context.Context, driverPK uint, cardID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		holder, err := first(tx.Where("card_id = ?", cardID).Where("id <> ?", driverPK))
		if err != nil {
			return err
		}
		if holder != nil {
			return domain.ErrCardAlreadyExists
		}

		return tx.Model(&models.Driver{}).
			Where("id = ?", driverPK).
			Updates(map[string]interface{}{
				"card_id":         cardID,
				"dev_status_mode": domain.DeviceModeAttendance,
			}).Error
	})
}

// GetByDriverID finds a driver by external id within the subject's tenancy
func (r *driverRepository) GetByDriverID(ctx context.Context, subject domain.Subject, driverID string) (*models.Driver, error) {
	return first(r.db.WithContext(ctx).
		Scopes(DriverScope(subject)).
		Where("drivers.driver_id = ?", driverID))
}

// GetByID finds a driver by primary key within the subject's tenancy
func (r *driverRepository) GetByID(ctx context.Context, subject domain.Subject, id uint) (*models.Driver, error) {
	return first(r.db.WithContext(ctx).
		Scopes(DriverScope(subject)).
		Where("drivers.id = ?", id))
}

// List lists the subject's drivers, newest first
func (r *driverRepository) List(ctx context.Context, subject domain.Subject, offset, limit int) ([]*models.Driver, int64, error) {
	var drivers []*models.Driver
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Scopes(DriverScope(subject)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(DriverScope(subject)).
		Preload("Admins").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&drivers).Error
	if err != nil {
		return nil, 0, err
	}

	return drivers, total, nil
}

// Exists reports whether the external id was ever used or the device is taken
func (r *driverRepository) Exists(ctx context.Context, driverID, devID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Driver{}).
		Where("driver_id = ?", driverID).
		Count(&count).Error
	if err != nil || count > 0 {
		return count > 0, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("dev_id = ?", devID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a driver and links it to the owning admin
func (r *driverRepository) Create(ctx context.Context, driver *models.Driver, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Admins").Create(driver).Error; err != nil {
			return err
		}
		return tx.Create(&models.DriverAdmin{DriverID: driver.ID, AdminID: ownerID}).Error
	})
}

// Update applies column updates to a driver
func (r *driverRepository) Update(ctx context.Context, driver *models.Driver, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(driver).Updates(fields).Error
}

// SoftDelete releases the driver's card and marks the row deleted
func (r *driverRepository) SoftDelete(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(driver).Update("card_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(driver).Error
	})
}

// AdminsForDrivers returns the admin ids linked to each driver
func (r *driverRepository) AdminsForDrivers(ctx context.Context, driverIDs []string) (map[string][]uint, error) {
	owners := make(map[string][]uint, len(driverIDs))
	if len(driverIDs) == 0 {
		return owners, nil
	}

	var rows []struct {
		DriverID string
		AdminID  uint
	}
	err := r.db.WithContext(ctx).
		Unscoped().
		Table("drivers").
		Select("drivers.driver_id, driver_admins.admin_id").
		Joins("JOIN driver_admins ON driver_admins.driver_id = drivers.id").
		Where("drivers.driver_id IN ?", driverIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		owners[row.DriverID] = append(owners[row.DriverID], row.AdminID)
	}
	return owners, nil
}

// Count counts the subject's live drivers
func (r *driverRepository) Count(ctx context.Context, subject domain.Subject) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Scopes(DriverScope(subject)).
		Count(&total).Error
	return total, err
}
