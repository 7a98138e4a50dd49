package repositories

import (
	"context"

	"rfid-attendance/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// adminRepository implements AdminRepository interface
type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

// Create creates a new admin
func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// GetByID gets an admin by ID
func (r *adminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByUsername gets an admin by username
func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// List lists admins with pagination
func (r *adminRepository) List(ctx context.Context, offset, limit int) ([]*models.Admin, int64, error) {
	var admins []*models.Admin
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&admins).Error
	if err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}

// ExistsByUsernameOrEmail checks both unique columns at once
func (r *adminRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// CountByRole counts admins holding a role
func (r *adminRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// LinkDriver puts a driver under an admin's tenancy. Linking twice is a no-op.
func (r *adminRepository) LinkDriver(ctx context.Context, adminID, driverPK uint) error {
	link := models.DriverAdmin{DriverID: driverPK, AdminID: adminID}
	return r.db.WithContext(ctx).
		Where(&link).
		FirstOrCreate(&models.DriverAdmin{DriverID: driverPK, AdminID: adminID}).Error
}
