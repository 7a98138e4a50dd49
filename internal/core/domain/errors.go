package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Card and device errors
var (
	ErrCardNotFound        = errors.New("no driver holds this card")
	ErrDeviceNotRegistered = errors.New("driver device is not in attendance mode")
	ErrDeviceMismatch      = errors.New("card presented on a device that is not the driver's")
	ErrDeviceNotFound      = errors.New("no driver is assigned to this device")
	ErrCardAlreadyExists   = errors.New("card already assigned to another driver")
)

// Attendance errors
var (
	ErrAlreadyIn          = errors.New("driver already has an open attendance record")
	ErrNoActiveRecord     = errors.New("no open attendance record")
	ErrNotPaid            = errors.New("attendance record is not paid")
	ErrNotYetPaid         = errors.New("driver has not yet paid")
	ErrRecordNotLatest    = errors.New("attendance record is not the driver's latest")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceConflict = errors.New("attendance already recorded for today")
)

// Payment errors
var (
	ErrPaymentNotApplicable = errors.New("payment does not apply to the record's current state")
)

// Driver errors
var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDriverAlreadyExists = errors.New("driver already exists")
	ErrInvalidDeviceMode   = errors.New("invalid device mode")
)
