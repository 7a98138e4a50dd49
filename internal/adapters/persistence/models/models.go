package models

import (
	"time"

	"rfid-attendance/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Admins & sessions
// ============================================================

// Admin represents admins table
type Admin struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;not null;default:'admin'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Drivers   []Driver       `gorm:"many2many:driver_admins;" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}

// AdminResponse DTO
type AdminResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Admin) ToResponse() *AdminResponse {
	return &AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// Subject returns the tenant identity of the admin
func (a *Admin) Subject() domain.Subject {
	return domain.Subject{ID: a.ID, Role: a.Role}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AdminID   uint       `gorm:"index;not null" json:"admin_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	Admin     Admin      `gorm:"foreignKey:AdminID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Drivers & attendance
// ============================================================

// Driver represents drivers table. Soft-deleted rows release their card.
type Driver struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	DriverID      string         `gorm:"uniqueIndex;size:50;not null" json:"driver_id"`
	CardID        *string        `gorm:"uniqueIndex;size:100" json:"card_id"`
	DevID         string         `gorm:"index;size:100;not null" json:"dev_id"`
	DevStatusMode string         `gorm:"size:20;not null;default:'Register'" json:"dev_status_mode"`
	FirstName     string         `gorm:"size:100" json:"first_name"`
	LastName      string         `gorm:"size:100" json:"last_name"`
	FullName      string         `gorm:"size:200;not null" json:"full_name"`
	Contact       string         `gorm:"size:30" json:"contact"`
	PlateNo       string         `gorm:"size:20" json:"plate_no"`
	Admins        []Admin        `gorm:"many2many:driver_admins;" json:"admins,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Driver) TableName() string {
	return "drivers"
}

// InAttendanceMode reports whether card taps authenticate instead of register
func (d *Driver) InAttendanceMode() bool {
	return d.DevStatusMode == domain.DeviceModeAttendance
}

// DriverAdmin is a row of the driver_admins join table that defines tenancy
type DriverAdmin struct {
	DriverID uint `gorm:"primaryKey" json:"driver_id"`
	AdminID  uint `gorm:"primaryKey" json:"admin_id"`
}

func (DriverAdmin) TableName() string {
	return "driver_admins"
}

// Attendance represents attendances table, one row per work session
type Attendance struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	DriverID     string     `gorm:"index;size:50;not null" json:"driver_id"`
	FullName     string     `gorm:"size:200" json:"full_name"`
	DriverStatus string     `gorm:"size:10;not null" json:"driver_status"`
	Butaw        float64    `gorm:"type:decimal(10,2);not null;default:0" json:"butaw"`
	Boundary     float64    `gorm:"type:decimal(10,2);not null;default:0" json:"boundary"`
	Balance      float64    `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	Paid         string     `gorm:"size:20;not null;index" json:"paid"`
	TimeIn       *time.Time `gorm:"index" json:"time_in"`
	TimeOut      *time.Time `gorm:"index" json:"time_out"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Driver       *Driver    `gorm:"foreignKey:DriverID;references:DriverID" json:"driver,omitempty"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// IsOpen reports a session that was timed in and not yet timed out
func (a *Attendance) IsOpen() bool {
	return a.TimeIn != nil && a.TimeOut == nil
}

// IsPaid reports whether both dues are settled
func (a *Attendance) IsPaid() bool {
	return a.Paid == domain.PaymentPaid
}

// NewAttendance builds a fresh open record for a driver
func NewAttendance(driver *Driver, now time.Time) *Attendance {
	timeIn := now
	return &Attendance{
		DriverID:     driver.DriverID,
		FullName:     driver.FullName,
		DriverStatus: domain.DriverStatusIn,
		Butaw:        0,
		Boundary:     0,
		Balance:      domain.DailyBalance,
		Paid:         domain.PaymentNotPaid,
		TimeIn:       &timeIn,
		CreatedAt:    now,
	}
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&RefreshToken{},
		&Driver{},
		&Attendance{},
	)
}
