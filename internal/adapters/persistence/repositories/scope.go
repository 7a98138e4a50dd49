package repositories

import (
	"rfid-attendance/internal/core/domain"

	"gorm.io/gorm"
)

// DriverScope restricts a drivers query to the drivers the subject administers.
// Super-admins are unrestricted.
func DriverScope(subject domain.Subject) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if subject.IsSuperAdmin() {
			return db
		}
		managed := db.Session(&gorm.Session{NewDB: true}).
			Table("driver_admins").
			Select("driver_admins.driver_id").
			Where("driver_admins.admin_id = ?", subject.ID)
		return db.Where("drivers.id IN (?)", managed)
	}
}

// AttendanceScope restricts an attendances query to records of live drivers
// the subject administers.
func AttendanceScope(subject domain.Subject) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		owners := db.Session(&gorm.Session{NewDB: true}).
			Table("drivers").
			Select("drivers.driver_id").
			Where("drivers.deleted_at IS NULL")
		if !subject.IsSuperAdmin() {
			owners = owners.
				Joins("JOIN driver_admins ON driver_admins.driver_id = drivers.id").
				Where("driver_admins.admin_id = ?", subject.ID)
		}
		return db.Where("attendances.driver_id IN (?)", owners)
	}
}
