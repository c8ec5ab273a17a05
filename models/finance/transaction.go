package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	bookingModel "mayor-k/models/booking"
	"mayor-k/types"
)

// Transaction types
const (
	TypePayment    = "PAYMENT"
	TypeRefund     = "REFUND"
	TypeCorrection = "CORRECTION"
	TypeVoid       = "VOID"
)

// Payment methods
const (
	MethodCash     = "CASH"
	MethodTransfer = "TRANSFER"
	MethodPOS      = "POS"
	MethodPaystack = "PAYSTACK"
	MethodSplit    = "SPLIT"
)

// Transaction statuses
const (
	StatusConfirmed        = "CONFIRMED"
	StatusPending          = "PENDING"
	StatusAwaitingTransfer = "AWAITING_TRANSFER"
	StatusFailed           = "FAILED"
)

// Transaction is one row of the immutable financial ledger. Rows are never
// updated or deleted; the only way to alter a transaction's economic effect is
// a new CORRECTION row pointing back at it. Amount is signed, corrections may
// be negative.
type Transaction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionRef string    `gorm:"type:varchar(20);not null;unique" json:"transaction_ref"`

	BookingID *uuid.UUID            `gorm:"type:uuid;index:idx_transactions_booking_time,priority:1" json:"booking_id,omitempty"`
	Booking   *bookingModel.Booking `gorm:"foreignKey:BookingID" json:"-"`

	TransactionType string `gorm:"type:varchar(15);not null;default:PAYMENT;index" json:"transaction_type"`
	PaymentMethod   string `gorm:"type:varchar(15);not null;default:CASH" json:"payment_method"`
	Status          string `gorm:"type:varchar(20);not null;default:CONFIRMED;index" json:"status"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`

	OriginalTransactionID *uuid.UUID   `gorm:"type:uuid" json:"original_transaction_id,omitempty"`
	OriginalTransaction   *Transaction `gorm:"foreignKey:OriginalTransactionID" json:"-"`
	CorrectionReason      string       `gorm:"type:text" json:"correction_reason,omitempty"`

	ProcessedByID *uuid.UUID `gorm:"type:uuid" json:"processed_by,omitempty"`
	ActorRole     string     `gorm:"type:varchar(40)" json:"actor_role,omitempty"`

	ExternalRef string `gorm:"type:varchar(100)" json:"external_ref,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	// No UpdatedAt: the ledger has no update path.
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_transactions_booking_time,priority:2" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "transaction", ID: t.ID.String()}
}

func (t *Transaction) BeforeDelete(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "transaction", ID: t.ID.String()}
}
