package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mayor-k/types"
)

// BookingExtension is the immutable audit record of a checkout-time change.
// A booking may have many; each is appended once and never touched again.
type BookingExtension struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	Booking   Booking   `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`

	OriginalCheckout time.Time `gorm:"not null" json:"original_checkout"`
	NewCheckout      time.Time `gorm:"not null" json:"new_checkout"`

	AdditionalNights uint            `gorm:"default:0" json:"additional_nights"`
	AdditionalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"additional_amount"`

	ApprovedByID *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BookingExtension) TableName() string {
	return "booking_extensions"
}

func (e *BookingExtension) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *BookingExtension) BeforeUpdate(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "booking extension", ID: e.ID.String()}
}

func (e *BookingExtension) BeforeDelete(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "booking extension", ID: e.ID.String()}
}
