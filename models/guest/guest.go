package guest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Guest is the guest directory entry, keyed by phone for repeat-guest
// recognition. TotalStays and TotalSpent are aggregates maintained by the
// booking checkout path.
type Guest struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"type:varchar(100);not null" json:"name"`
	Phone string    `gorm:"type:varchar(20);not null;unique" json:"phone"`
	Email string    `gorm:"type:varchar(255)" json:"email,omitempty"`

	Notes     string `gorm:"type:text" json:"notes,omitempty"`
	IsBlocked bool   `gorm:"default:false" json:"is_blocked"`

	TotalStays uint            `gorm:"default:0" json:"total_stays"`
	TotalSpent decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_spent"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Guest) TableName() string {
	return "guests"
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
