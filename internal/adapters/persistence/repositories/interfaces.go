package repositories

import (
	"context"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/pagination"
)

// AdminRepository defines admin repository interface
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	List(ctx context.Context, offset, limit int) ([]*models.Admin, int64, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	LinkDriver(ctx context.Context, adminID, driverPK uint) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByAdminID(ctx context.Context, adminID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// DriverRepository defines driver repository interface.
// Kiosk lookups return (nil, nil) when nothing matches.
type DriverRepository interface {
	// kiosk
	GetByCardID(ctx context.Context, cardID string) (*models.Driver, error)
	GetByDevID(ctx context.Context, devID string) (*models.Driver, error)
	OldestAwaitingCard(ctx context.Context) (*models.Driver, error)
	AssignCard(ctx context.Context, driverPK uint, cardID string) error

	// administration, tenant scoped
	GetByDriverID(ctx context.Context, subject domain.Subject, driverID string) (*models.Driver, error)
	GetByID(ctx context.Context, subject domain.Subject, id uint) (*models.Driver, error)
	List(ctx context.Context, subject domain.Subject, offset, limit int) ([]*models.Driver, int64, error)
	Exists(ctx context.Context, driverID, devID string) (bool, error)
	Create(ctx context.Context, driver *models.Driver, ownerID uint) error
	Update(ctx context.Context, driver *models.Driver, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, driver *models.Driver) error
	Count(ctx context.Context, subject domain.Subject) (int64, error)

	// AdminsForDrivers maps external driver ids, deleted ones included, to their admins.
	AdminsForDrivers(ctx context.Context, driverIDs []string) (map[string][]uint, error)
}

// AttendanceRepository defines attendance repository interface
type AttendanceRepository interface {
	FindUnfinished(ctx context.Context, driverID string) (*models.Attendance, error)
	FindForDay(ctx context.Context, driverID string, dayStart, dayEnd time.Time) (*models.Attendance, error)
	GetByID(ctx context.Context, id uint) (*models.Attendance, error)

	// CreateIfNoneOpen inserts record unless the driver already has an open one.
	CreateIfNoneOpen(ctx context.Context, record *models.Attendance) error
	// CreateIfDayFree also refuses when a record was completed within [dayStart, dayEnd).
	CreateIfDayFree(ctx context.Context, record *models.Attendance, dayStart, dayEnd time.Time) error
	// CompleteLatest closes the driver's latest record if it is open and paid.
	CompleteLatest(ctx context.Context, driverID string, recordID uint, now time.Time) (*models.Attendance, error)

	// ListActive pages records created in [dayStart, dayEnd) or still open; params is clamped to the last page.
	ListActive(ctx context.Context, subject domain.Subject, dayStart, dayEnd time.Time, params *pagination.Params) ([]*models.Attendance, int64, error)
	LatestPaidOpen(ctx context.Context, subject domain.Subject, driverID string) (*models.Attendance, error)
	// ListUnpaidOpen lists open, unpaid records created in [dayStart, dayEnd).
	ListUnpaidOpen(ctx context.Context, dayStart, dayEnd time.Time) ([]*models.Attendance, error)
	ApplyPayment(ctx context.Context, subject domain.Subject, id uint, driverID string, apply func(*models.Attendance) error) (*models.Attendance, error)

	// dashboard reads, tenant scoped
	CountDay(ctx context.Context, subject domain.Subject, dayStart, dayEnd time.Time) (*DayCounts, error)
	ListActiveAll(ctx context.Context, subject domain.Subject, dayStart, dayEnd time.Time) ([]*models.Attendance, error)
	ListUnpaidByDriver(ctx context.Context, driverID string) ([]*models.Attendance, error)
}

// DayCounts tallies the records created in one day
type DayCounts struct {
	Attendance int64
	Butaw      int64
	Boundary   int64
	Paid       int64
}
