package booking

import "github.com/shopspring/decimal"

// QuickBookRequest is the walk-in fast path: guest lookup/create, booking and
// first payment in one call.
type QuickBookRequest struct {
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`

	RoomID    string `json:"room_id"`
	StayType  string `json:"stay_type"`
	NumNights int    `json:"num_nights"`
	NumGuests int    `json:"num_guests"`

	PaymentMethod string          `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`

	Notes          string          `json:"notes,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountReason string          `json:"discount_reason,omitempty"`
}

// ExtendRequest extends a checked-in stay. Kind is either "NIGHTS" (add
// AdditionalNights at the overnight rate) or "SHORT_TO_OVERNIGHT".
type ExtendRequest struct {
	Kind             string `json:"kind"`
	AdditionalNights int    `json:"additional_nights"`
}

// CreateBookingRequest creates an advance (non walk-in) booking.
type CreateBookingRequest struct {
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`

	RoomID      string `json:"room_id"`
	StayType    string `json:"stay_type"`
	Source      string `json:"source"`
	CheckInDate string `json:"check_in_date"`
	NumNights   int    `json:"num_nights"`
	NumGuests   int    `json:"num_guests"`

	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountReason string          `json:"discount_reason,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// RejectRequest is shared by the cancel and no-show endpoints.
type StatusReasonRequest struct {
	Reason string `json:"reason,omitempty"`
}
