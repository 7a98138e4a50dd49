package domain

// Attendance status tokens. Kiosk firmware matches these byte for byte.
const (
	StatusUnfinish = "Unfinish"
	StatusNoIn     = "NoIn"
	StatusInPaid   = "InPaid"
	StatusInNoPaid = "InNoPaid"
	StatusDone     = "Done"
	StatusUnknown  = "Unkn"
)

// Device modes
const (
	DeviceModeRegister   = "Register"
	DeviceModeAttendance = "Attendance"
)

// Payment states of an attendance record
const (
	PaymentNotPaid = "Not Paid"
	PaymentPaid    = "Paid"
)

// Driver status written on attendance records
const (
	DriverStatusIn  = "IN"
	DriverStatusOut = "OUT"
)

// Daily dues collected per attendance record
const (
	ButawFee     = 20.0
	BoundaryFee  = 300.0
	DailyBalance = ButawFee + BoundaryFee
)

// Admin roles
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
)

// Event names pushed to administrator sessions
const (
	EventTimeIn          = "attendance:timein"
	EventLogoutRequested = "attendance:logout-confirmation"
	EventLogoutCompleted = "attendance:logout-completed"
	EventCardUpdated     = "card_updated"
	EventPaymentButaw    = "updated_payment_butaw"
	EventPaymentBoundary = "updated_payment_boundary"
	EventBothPayments    = "updated_both_payments"
	EventDriversUpdated  = "updated"
	EventPaymentReminder = "payment:reminder"
)

// Subject is the resolved identity of an administrative request
type Subject struct {
	ID   uint
	Role string
}

// IsSuperAdmin reports whether the subject sees every tenant
func (s Subject) IsSuperAdmin() bool {
	return s.Role == RoleSuperAdmin
}

// ValidRole checks an admin role name
func ValidRole(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}
