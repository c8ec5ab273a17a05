package booking

// Stay types
const (
	StayShortRest = "SHORT_REST"
	StayOvernight = "OVERNIGHT"
	StayLodge     = "LODGE"
)

// Booking statuses
const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusCheckedIn  = "CHECKED_IN"
	StatusCheckedOut = "CHECKED_OUT"
	StatusCancelled  = "CANCELLED"
	StatusNoShow     = "NO_SHOW"
)

// Booking sources
const (
	SourceWalkIn    = "WALK_IN"
	SourceOnline    = "ONLINE"
	SourcePhone     = "PHONE"
	SourceCorporate = "CORPORATE"
)

// ValidStayType reports whether s is a known stay type.
func ValidStayType(s string) bool {
	switch s {
	case StayShortRest, StayOvernight, StayLodge:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a status admits no further transitions. Terminal
// bookings are immutable except for ledger corrections.
func IsTerminal(status string) bool {
	return status == StatusCheckedOut || status == StatusCancelled || status == StatusNoShow
}

// CanCancel reports whether a booking in the given status may still be
// cancelled or marked no-show. Only forward transitions exist otherwise.
func CanCancel(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}
