package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense statuses
const (
	ExpensePending  = "PENDING"
	ExpenseApproved = "APPROVED"
	ExpenseRejected = "REJECTED"
)

// ExpenseCategory groups expenses: Utilities, Supplies, Maintenance, Diesel.
type ExpenseCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null;unique" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

func (c *ExpenseCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Expense is an operational expense with a one-shot approval workflow:
// PENDING then APPROVED or REJECTED, both terminal.
type Expense struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExpenseRef string    `gorm:"type:varchar(15);not null;unique" json:"expense_ref"`

	CategoryID uuid.UUID       `gorm:"type:uuid;not null" json:"category_id"`
	Category   ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category"`

	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	VendorName  string          `gorm:"type:varchar(100)" json:"vendor_name,omitempty"`

	Status string `gorm:"type:varchar(15);not null;default:PENDING;index" json:"status"`

	LoggedByID      *uuid.UUID `gorm:"type:uuid" json:"logged_by,omitempty"`
	ApprovedByID    *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	ExpenseDate time.Time `gorm:"type:date;not null;index" json:"expense_date"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
