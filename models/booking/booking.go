package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	guestModel "mayor-k/models/guest"
	roomModel "mayor-k/models/room"
)

// Booking is the core record tying a guest to a room for a stay. There is no
// amount_paid column: the paid total is derived from the transaction ledger so
// corrections never desynchronize a cache.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingRef string    `gorm:"type:varchar(12);not null;unique" json:"booking_ref"`

	GuestID uuid.UUID        `gorm:"type:uuid;not null" json:"guest_id"`
	Guest   guestModel.Guest `gorm:"foreignKey:GuestID" json:"guest"`

	RoomID uuid.UUID      `gorm:"type:uuid;not null;index:idx_bookings_room_status,priority:1" json:"room_id"`
	Room   roomModel.Room `gorm:"foreignKey:RoomID" json:"room"`

	StayType string `gorm:"type:varchar(15);not null;default:OVERNIGHT" json:"stay_type"`
	Status   string `gorm:"type:varchar(15);not null;default:PENDING;index:idx_bookings_room_status,priority:2" json:"status"`
	Source   string `gorm:"type:varchar(15);not null;default:WALK_IN" json:"source"`

	CheckInDate      time.Time  `gorm:"type:date;not null;index" json:"check_in_date"`
	CheckInTime      *time.Time `json:"check_in_time,omitempty"`
	ExpectedCheckout time.Time  `gorm:"not null;index" json:"expected_checkout"`
	ActualCheckout   *time.Time `json:"actual_checkout,omitempty"`

	NumNights uint `gorm:"default:1" json:"num_nights"`
	NumGuests uint `gorm:"default:1" json:"num_guests"`

	RoomRate    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"room_rate"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	DiscountAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	DiscountReason      string          `gorm:"type:varchar(200)" json:"discount_reason,omitempty"`
	IsComplimentary     bool            `gorm:"default:false" json:"is_complimentary"`
	ComplimentaryReason string          `gorm:"type:varchar(200)" json:"complimentary_reason,omitempty"`

	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BalanceDue computes what the guest still owes given the ledger-derived paid
// total.
func (b *Booking) BalanceDue(amountPaid decimal.Decimal) decimal.Decimal {
	return b.TotalAmount.Sub(amountPaid).Sub(b.DiscountAmount)
}

// IsFullyPaid reports whether the derived balance is settled.
func (b *Booking) IsFullyPaid(amountPaid decimal.Decimal) bool {
	return b.BalanceDue(amountPaid).LessThanOrEqual(decimal.Zero)
}
